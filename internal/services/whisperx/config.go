package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the model size ("base", "small", "medium", "large") or an
	// explicit WhisperX model name.
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
}

// WhisperX configuration constants.
const (
	DefaultModel      = "small"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	BeamSize          = "5"
	Temperature       = "0.0"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// UVXCommand is the launcher used to run WhisperX in an isolated environment.
const UVXCommand = "uvx"

// ModelName maps a model size onto the WhisperX model identifier. Unknown
// values pass through so callers can pin a specific checkpoint.
func ModelName(size string) string {
	switch size {
	case "":
		return DefaultModel
	case "large":
		return "large-v3"
	default:
		return size
	}
}
