package config

// Default values for configuration
const (
	DefaultConfigPath = "configs/config.yaml"

	// LLM defaults
	DefaultModel         = "gemini-3-pro-preview"
	DefaultFlashModel    = "gemini-3-flash-preview"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// Content defaults
	DefaultLanguage         = "vi"
	DefaultDurationMin      = 240
	DefaultFrameRatio       = "16:9"
	DefaultUploadChunkChars = 3000

	// Persistence defaults
	DefaultSessionsPath = "data/sessions.json"

	// Output defaults
	DefaultThumbnailWidth = 1280
	DefaultExportDir      = "out"

	// YouTube research defaults
	DefaultYouTubeMaxResults = 10

	// HTTP timeouts and limits
	MaxIdleConns          = 100
	MaxIdleConnsPerHost   = 100
	IdleConnTimeout       = 90 // seconds
	TLSHandshakeTimeout   = 10 // seconds
	ExpectContinueTimeout = 1  // second

	// Logging defaults
	DefaultLogLevel = "INFO"

	// Environment overrides
	EnvGeminiKeys  = "GEMINI_API_KEYS"
	EnvOpenAIKeys  = "OPENAI_API_KEYS"
	EnvDatabaseURL = "DATABASE_URL"
	EnvYouTubeKey  = "YOUTUBE_API_KEY"
)
