package whisper

// Tool invocation constants for the faster-whisper CLI.
const (
	DefaultCommand = "whisper-ctranslate2"
	DefaultModel   = "tiny"

	// Detection runs with minimal search effort: greedy decoding with voice
	// activity filtering keeps a 20-second clip under a second of inference
	// on CPU.
	beamSize    = "1"
	temperature = "0"
	computeType = "int8"
	device      = "cpu"
)

// Config describes the speech-language classifier backend.
type Config struct {
	// Command is the CLI binary to invoke. Defaults to DefaultCommand.
	Command string
	// Model is the model size (tiny, base, small, ...). Defaults to DefaultModel.
	Model string
	// CPUThreads limits inference threads; 0 lets the backend choose.
	CPUThreads int
}
