package config

const (
	defaultConfigPath             = "~/.config/vidlingo/config.toml"
	defaultUploadDir              = "~/.local/share/vidlingo/uploads"
	defaultProcessedDir           = "~/.local/share/vidlingo/processed"
	defaultWorkDir                = "~/.local/share/vidlingo/work"
	defaultStateDir               = "~/.local/share/vidlingo"
	defaultLogDir                 = "~/.local/share/vidlingo/logs"
	defaultWhisperXCacheDir       = "~/.cache/vidlingo/whisperx"
	defaultAPIBind                = "127.0.0.1:7490"
	defaultMaxUploadMB            = 2048
	defaultTargetLanguage         = "fr"
	defaultSourceLanguage         = "auto"
	defaultTranslationProvider    = "google"
	defaultGoogleTranslateURL     = "https://translate.googleapis.com/translate_a/single"
	defaultTranslationTimeout     = 30
	defaultLLMBaseURL             = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel               = "google/gemini-3-flash-preview"
	defaultLLMReferer             = "https://github.com/vidlingo/vidlingo"
	defaultLLMTitle               = "vidlingo translator"
	defaultLLMTimeoutSeconds      = 60
	defaultSynthesisURL           = "https://translate.google.com/translate_tts"
	defaultSynthesisTimeout       = 30
	defaultVideoCodec             = "libx264"
	defaultAudioCodec             = "aac"
	defaultVADMethod              = "silero"
	defaultWorkers                = 2
	defaultQueueCapacity          = 16
	defaultQueuePollInterval      = 5
	defaultHeartbeatInterval      = 15
	defaultHeartbeatTimeout       = 120
	defaultWorkRetentionDays      = 7
	defaultNotifyRequestTimeout   = 10
	defaultAMQPQueue              = "vidlingo.jobs"
	defaultStoragePrefix          = "vidlingo"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 30
	supportedTranslationProviders = "google, llm"
)

var defaultAllowedExtensions = []string{".mp4", ".mov", ".mkv", ".webm", ".avi"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir:    defaultUploadDir,
			ProcessedDir: defaultProcessedDir,
			WorkDir:      defaultWorkDir,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
			MaxUploadMB:  defaultMaxUploadMB,
		},
		Transcription: Transcription{
			VADMethod: defaultVADMethod,
			CacheDir:  defaultWhisperXCacheDir,
		},
		Translation: Translation{
			Provider:       defaultTranslationProvider,
			TargetLanguage: defaultTargetLanguage,
			SourceLanguage: defaultSourceLanguage,
			BaseURL:        defaultGoogleTranslateURL,
			TimeoutSeconds: defaultTranslationTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Synthesis: Synthesis{
			BaseURL:        defaultSynthesisURL,
			TimeoutSeconds: defaultSynthesisTimeout,
		},
		Video: Video{
			VideoCodec:        defaultVideoCodec,
			AudioCodec:        defaultAudioCodec,
			AllowedExtensions: append([]string(nil), defaultAllowedExtensions...),
		},
		Workflow: Workflow{
			Workers:           defaultWorkers,
			QueueCapacity:     defaultQueueCapacity,
			QueuePollInterval: defaultQueuePollInterval,
			HeartbeatInterval: defaultHeartbeatInterval,
			HeartbeatTimeout:  defaultHeartbeatTimeout,
			RetentionDays:     defaultWorkRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			JobCompleted:   true,
			JobFailed:      true,
			AMQPQueue:      defaultAMQPQueue,
		},
		Storage: Storage{
			Prefix: defaultStoragePrefix,
			UseSSL: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
