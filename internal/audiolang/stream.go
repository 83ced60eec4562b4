package audiolang

import (
	"langmux/internal/language"
	"langmux/internal/media/ffprobe"
)

// Stream describes one audio stream of a container in classifier terms.
type Stream struct {
	// AudioIndex is the position among audio streams, matching ffmpeg's
	// 0:a:N addressing.
	AudioIndex int
	// ProbeIndex is the absolute stream index in the container.
	ProbeIndex int
	Codec      string
	Channels   int
	SampleRate int
	// Language is the existing normalized ISO 639-2 tag, or empty when the
	// stream carries no recognizable language metadata.
	Language string
	Title    string
}

// StreamsFromProbe converts an ffprobe result into audio stream descriptors
// in container order.
func StreamsFromProbe(result ffprobe.Result) []Stream {
	probed := result.AudioStreams()
	streams := make([]Stream, 0, len(probed))
	for i, s := range probed {
		streams = append(streams, Stream{
			AudioIndex: i,
			ProbeIndex: s.Index,
			Codec:      s.CodecName,
			Channels:   s.Channels,
			SampleRate: s.SampleRateHz(),
			Language:   language.NormalizeISO3(language.ExtractFromTags(s.Tags)),
			Title:      s.Tags["title"],
		})
	}
	return streams
}
