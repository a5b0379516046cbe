package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults
const (
	DefaultModel             = "tiny"
	DefaultEngine            = "whisper_cpp"
	DefaultLanguage          = "auto"
	DefaultHTTPPort          = "8080"
	DefaultTranscribeTimeout = 3 * time.Minute
	DefaultMaxUploadMB       = 25
	DefaultCacheTTL          = 24 * time.Hour
)

// Settings is everything the bridge and the server read from the environment.
type Settings struct {
	Model        string `validate:"required"`
	Engine       string `validate:"required"`
	ModelsDir    string
	AutoDownload bool
	Language     string `validate:"required"`
	ConfigPath   string

	// EngineFromEnv is set when WHISPER_ENGINE chose Engine.
	EngineFromEnv bool

	Port              string        `validate:"required,numeric"`
	TranscribeTimeout time.Duration `validate:"gt=0,max=30m"`
	MaxUploadMB       int           `validate:"gte=1,lte=1024"`
	StaticDir         string

	HistoryDSN string
	RedisURL   string    `validate:"omitempty,url"`
	CacheTTL   time.Duration
	MinIO      MinIOSettings
}

// MinIOSettings configures transcript archiving. Empty Endpoint disables it.
type MinIOSettings struct {
	Endpoint  string `validate:"omitempty,hostname_port"`
	AccessKey string `validate:"required_with=Endpoint"`
	SecretKey string `validate:"required_with=Endpoint"`
	Bucket    string `validate:"required_with=Endpoint"`
	UseSSL    bool
}

var validate = validator.New()

// Defaults is what FromEnv returns for an empty environment.
func Defaults() *Settings {
	return &Settings{
		Model:             DefaultModel,
		Engine:            DefaultEngine,
		Language:          DefaultLanguage,
		Port:              DefaultHTTPPort,
		TranscribeTimeout: DefaultTranscribeTimeout,
		MaxUploadMB:       DefaultMaxUploadMB,
		StaticDir:         "static",
		CacheTTL:          DefaultCacheTTL,
		MinIO:             MinIOSettings{Bucket: "whisper-bridge"},
	}
}

// FromEnv reads Settings from the process environment and validates them.
func FromEnv() (*Settings, error) {
	s := &Settings{
		Model:        getEnvOrDefault("WHISPER_MODEL", DefaultModel),
		Engine:       getEnvOrDefault("WHISPER_ENGINE", DefaultEngine),
		ModelsDir:    strings.TrimSpace(os.Getenv("WHISPER_MODELS_DIR")),
		AutoDownload: getEnvBool("WHISPER_AUTO_DOWNLOAD", false),
		Language:     getEnvOrDefault("WHISPER_LANGUAGE", DefaultLanguage),
		ConfigPath:   strings.TrimSpace(os.Getenv("WHISPER_BRIDGE_CONFIG")),

		Port:        getEnvOrDefault("PORT", DefaultHTTPPort),
		MaxUploadMB: DefaultMaxUploadMB,
		StaticDir:   getEnvOrDefault("WHISPER_STATIC_DIR", "static"),

		HistoryDSN: strings.TrimSpace(os.Getenv("HISTORY_DSN")),
		RedisURL:   strings.TrimSpace(os.Getenv("REDIS_URL")),
		MinIO: MinIOSettings{
			Endpoint:  strings.TrimSpace(os.Getenv("MINIO_ENDPOINT")),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnvOrDefault("MINIO_BUCKET", "whisper-bridge"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}

	s.EngineFromEnv = strings.TrimSpace(os.Getenv("WHISPER_ENGINE")) != ""

	var err error
	if s.TranscribeTimeout, err = getEnvDuration("WHISPER_TRANSCRIBE_TIMEOUT", DefaultTranscribeTimeout); err != nil {
		return nil, err
	}
	if s.CacheTTL, err = getEnvDuration("WHISPER_CACHE_TTL", DefaultCacheTTL); err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(os.Getenv("WHISPER_MAX_UPLOAD_MB")); raw != "" {
		if s.MaxUploadMB, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("invalid WHISPER_MAX_UPLOAD_MB %q: %w", raw, err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the struct tags.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// ResolveEngine picks the engine when no --engine flag was given:
// WHISPER_ENGINE, then the engines file default, then DefaultEngine.
func (s *Settings) ResolveEngine(fileDefault string) string {
	if !s.EngineFromEnv && fileDefault != "" {
		return fileDefault
	}
	if s.Engine == "" {
		return DefaultEngine
	}
	return s.Engine
}

// MaxUploadBytes is the upload limit in bytes.
func (s *Settings) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: want a duration like 3m or seconds", key, raw)
	}
	return time.Duration(secs) * time.Second, nil
}
