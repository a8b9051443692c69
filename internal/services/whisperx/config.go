package whisperx

// Config captures runtime settings for WhisperX operations. The model is not
// configurable.
type Config struct {
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
	// Language forces the spoken language; empty lets WhisperX detect it.
	Language string
	// CacheDir is passed to uvx as the package cache.
	CacheDir string
}

// WhisperX configuration constants.
const (
	Model             = "base"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "8"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "int8"
	CUDAComputeType   = "float16"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// UVXCommand runs WhisperX without a managed virtualenv.
const UVXCommand = "uvx"
