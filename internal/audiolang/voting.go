package audiolang

import "sort"

// Sample is one classifier observation for an audio stream.
type Sample struct {
	// Language is a normalized ISO 639-2 code, or empty when the classifier
	// produced no usable code for the clip.
	Language string
	// Confidence is the model probability in [0,1].
	Confidence float64
}

// Decision is the aggregated outcome for a stream. An empty Language means
// the observations did not clear the confidence thresholds and no tag should
// be written.
type Decision struct {
	Language   string
	Confidence float64
	Samples    int
}

// Agreement thresholds. A language repeated across clips is trusted at a
// lower confidence than a single observation.
const (
	repeatedThreshold = 0.40
	singleThreshold   = 0.70
)

// Choose aggregates clip observations into a single decision. Observations
// are grouped by language; the group with the most members wins, ties broken
// by summed confidence, then by code for determinism. The winning language is
// emitted only when it clears the agreement thresholds; otherwise the
// decision carries the best observed confidence with no language.
func Choose(samples []Sample) Decision {
	best := 0.0
	groups := make(map[string][]Sample)
	for _, s := range samples {
		if s.Confidence > best {
			best = s.Confidence
		}
		if s.Language == "" {
			continue
		}
		groups[s.Language] = append(groups[s.Language], s)
	}
	if len(groups) == 0 {
		return Decision{Confidence: best, Samples: len(samples)}
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	winner := ""
	winnerCount := 0
	winnerSum := 0.0
	for _, code := range codes {
		count := len(groups[code])
		sum := 0.0
		for _, s := range groups[code] {
			sum += s.Confidence
		}
		if count > winnerCount || (count == winnerCount && sum > winnerSum) {
			winner, winnerCount, winnerSum = code, count, sum
		}
	}

	groupMax := 0.0
	for _, s := range groups[winner] {
		if s.Confidence > groupMax {
			groupMax = s.Confidence
		}
	}

	if (winnerCount >= 2 && groupMax >= repeatedThreshold) ||
		(winnerCount == 1 && groupMax >= singleThreshold) {
		return Decision{Language: winner, Confidence: groupMax, Samples: len(samples)}
	}
	return Decision{Confidence: best, Samples: len(samples)}
}
