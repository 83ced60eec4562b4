package ffprobe

import (
	"context"
	"errors"
	"testing"
)

const samplePayload = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 6, "sample_rate": "48000", "tags": {"language": "eng", "title": "Surround"}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "channels": 2},
    {"index": 3, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"language": "und"}}
  ],
  "format": {"filename": "movie.mkv", "nb_streams": 4, "duration": "5400.250000", "format_name": "matroska,webm"}
}`

func fakeRunner(payload string, err error) Runner {
	return func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return []byte(payload), nil
	}
}

func TestInspectParsesStreams(t *testing.T) {
	result, err := InspectWith(context.Background(), fakeRunner(samplePayload, nil), "ffprobe", "movie.mkv", "")
	if err != nil {
		t.Fatalf("InspectWith: %v", err)
	}

	audio := result.AudioStreams()
	if len(audio) != 2 {
		t.Fatalf("expected 2 audio streams, got %d", len(audio))
	}
	if audio[0].Index != 1 || audio[0].Channels != 6 {
		t.Errorf("unexpected first audio stream: %+v", audio[0])
	}
	if audio[0].Tags["language"] != "eng" {
		t.Errorf("expected language tag eng, got %q", audio[0].Tags["language"])
	}
	if audio[0].SampleRateHz() != 48000 {
		t.Errorf("SampleRateHz = %d, want 48000", audio[0].SampleRateHz())
	}
	if audio[1].SampleRateHz() != 0 {
		t.Errorf("missing sample rate should be 0, got %d", audio[1].SampleRateHz())
	}

	subs := result.SubtitleStreams()
	if len(subs) != 1 || subs[0].CodecName != "subrip" {
		t.Fatalf("unexpected subtitle streams: %+v", subs)
	}

	if got := result.DurationSeconds(); got != 5400.25 {
		t.Errorf("DurationSeconds = %v, want 5400.25", got)
	}
}

func TestInspectErrors(t *testing.T) {
	toolErr := errors.New("exit status 1")
	if _, err := InspectWith(context.Background(), fakeRunner("", toolErr), "ffprobe", "movie.mkv", "a"); err == nil {
		t.Fatal("expected error from failing runner")
	}
	if _, err := InspectWith(context.Background(), fakeRunner("not json", nil), "ffprobe", "movie.mkv", ""); err == nil {
		t.Fatal("expected error from malformed payload")
	}
	if _, err := InspectWith(context.Background(), fakeRunner(samplePayload, nil), "ffprobe", "", ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestDurationSecondsMalformed(t *testing.T) {
	payload := `{"streams": [], "format": {"duration": "garbage"}}`
	result, err := InspectWith(context.Background(), fakeRunner(payload, nil), "ffprobe", "movie.mkv", "")
	if err != nil {
		t.Fatalf("InspectWith: %v", err)
	}
	if got := result.DurationSeconds(); got != 0 {
		t.Errorf("malformed duration should yield 0, got %v", got)
	}
}
