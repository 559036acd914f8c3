package config

const (
	defaultConfigPath           = "~/.config/reelsense/config.toml"
	defaultOutputDir            = "outputs"
	defaultDataDir              = "~/.local/share/reelsense"
	defaultLogDir               = "~/.local/share/reelsense/logs"
	defaultCacheDir             = "~/.cache/reelsense"
	defaultHistoryPath          = "~/.local/share/reelsense/history.db"
	defaultTranscriptionBackend = "whisperx"
	defaultTranscriptionModel   = "small"
	defaultTranscriptionLang    = "en"
	defaultVADMethod            = "silero"
	defaultOpenAIBaseURL        = "https://api.openai.com/v1"
	defaultOpenAIModel          = "whisper-1"
	defaultFrameLength          = 2048
	defaultHopLength            = 512
	defaultVocalFreqLow         = 300
	defaultVocalFreqHigh        = 3400
	defaultNoiseCutoff          = 0.1
	defaultVocalMix             = 0.3
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel             = "openai/gpt-oss-20b:free"
	defaultLLMReferer           = "https://github.com/reelsense/reelsense"
	defaultLLMTitle             = "ReelSense AI"
	defaultLLMTimeoutSeconds    = 90
	defaultLLMTemperature       = 0.7
	defaultLLMMaxTokens         = 1500
	defaultConceptCount         = 3
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Backend names accepted by transcription.backend.
const (
	BackendWhisperX = "whisperx"
	BackendOpenAI   = "openai"
)

// ModelSizes lists the accepted transcription.model values.
var ModelSizes = []string{"base", "small", "medium", "large"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir,
		},
		Transcription: Transcription{
			Backend:       defaultTranscriptionBackend,
			Model:         defaultTranscriptionModel,
			Language:      defaultTranscriptionLang,
			Preprocess:    true,
			PostProcess:   true,
			VADMethod:     defaultVADMethod,
			OpenAIBaseURL: defaultOpenAIBaseURL,
			OpenAIModel:   defaultOpenAIModel,
		},
		Audio: Audio{
			FrameLength:   defaultFrameLength,
			HopLength:     defaultHopLength,
			VocalFreqLow:  defaultVocalFreqLow,
			VocalFreqHigh: defaultVocalFreqHigh,
			NoiseCutoff:   defaultNoiseCutoff,
			VocalMix:      defaultVocalMix,
		},
		Sentiment: Sentiment{
			VeryPositive: 0.2,
			Positive:     0.05,
			Negative:     -0.05,
			VeryNegative: -0.2,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			Temperature:    defaultLLMTemperature,
			MaxTokens:      defaultLLMMaxTokens,
		},
		Concepts: Concepts{
			Enabled: true,
			Count:   defaultConceptCount,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			ToFile: true,
		},
	}
}
