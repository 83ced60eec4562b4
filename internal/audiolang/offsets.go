package audiolang

// Sampling windows avoid studio logos at the head of a file and credits at
// the tail. Longer files skip more of the head because pre-roll content
// scales with runtime.
const (
	endPaddingSeconds = 300
	sampleSpanSeconds = 20
	offsetStepSeconds = 60
	wantOffsets       = 3
)

type tier struct {
	maxDuration float64
	headSkip    int
	fractions   [3]float64
}

var tiers = []tier{
	{2400, 120, [3]float64{0.25, 0.55, 0.80}},
	{4800, 300, [3]float64{0.20, 0.50, 0.78}},
	{0, 720, [3]float64{0.18, 0.45, 0.72}},
}

// FallbackOffsets returns the fixed sampling positions used when the
// container duration is unknown or the file is too short for planned windows.
func FallbackOffsets() []int {
	return []int{30, 150, 270}
}

// PlanOffsets computes up to three sampling start positions for a file of the
// given duration. Offsets land inside the usable span between the head skip
// and the end padding, are deduplicated, and are padded forward in
// offsetStepSeconds increments when clamping collapses candidates. Returns
// nil when the duration is unknown or leaves no usable window; callers fall
// back to FallbackOffsets.
func PlanOffsets(durationSeconds float64) []int {
	if durationSeconds <= 0 {
		return nil
	}

	t := tiers[len(tiers)-1]
	for _, candidate := range tiers[:len(tiers)-1] {
		if durationSeconds < candidate.maxDuration {
			t = candidate
			break
		}
	}

	usableEnd := durationSeconds - endPaddingSeconds
	if usableEnd <= 0 {
		return nil
	}

	minStart := t.headSkip
	if minStart < 30 {
		minStart = 30
	}
	maxStart := int(usableEnd - sampleSpanSeconds)
	if maxStart <= minStart {
		return nil
	}

	offsets := make([]int, 0, wantOffsets)
	for _, frac := range t.fractions {
		offset := int(usableEnd * frac)
		if offset < minStart {
			offset = minStart
		}
		if offset > maxStart {
			offset = maxStart
		}
		if len(offsets) == 0 || offsets[len(offsets)-1] != offset {
			offsets = append(offsets, offset)
		}
	}

	for len(offsets) < wantOffsets {
		next := offsets[len(offsets)-1] + offsetStepSeconds
		if next > maxStart {
			next = maxStart
		}
		if next == offsets[len(offsets)-1] {
			break
		}
		offsets = append(offsets, next)
	}
	return offsets
}
