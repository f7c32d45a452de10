package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultQuotaLimit       = 10
	defaultMaxFileBytes     = 5 << 20
	defaultCandidateTimeout = 60 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port               string
	CORSAllowOrigin    []string
	DatabaseURL        string
	Env                string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	GeminiAPIKey      string
	OpenAIAPIKey      string
	OpenAIModel       string
	LLMCandidates     string
	LLMCandidatesFile string
	CandidateTimeout  time.Duration

	QuotaLimit          int
	MaxFileBytes        int64
	DedupScope          string
	UploadRatePerMinute float64

	// ArchiveBackend is "", "local" or "s3". Empty keeps no copy of uploads.
	ArchiveBackend  string
	ArchiveDir      string
	ArchiveBucket   string
	ArchivePrefix   string
	ArchiveKMSKeyID string
	AWSRegion       string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Env:                normalizeEnv(getEnv("ENV", "dev")),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMCandidates:     getEnv("LLM_CANDIDATES", ""),
		LLMCandidatesFile: getEnv("LLM_CANDIDATES_FILE", ""),
		CandidateTimeout:  getDuration("LLM_CANDIDATE_TIMEOUT", defaultCandidateTimeout),

		QuotaLimit:          getInt("RESUME_QUOTA_LIMIT", defaultQuotaLimit),
		MaxFileBytes:        int64(getInt("RESUME_MAX_FILE_BYTES", defaultMaxFileBytes)),
		DedupScope:          strings.ToLower(getEnv("DEDUP_SCOPE", "owner")),
		UploadRatePerMinute: getFloat("UPLOAD_RATE_PER_MINUTE", 6),

		ArchiveBackend:  strings.ToLower(getEnv("ARCHIVE_BACKEND", "")),
		ArchiveDir:      getEnv("ARCHIVE_DIR", "data/archive"),
		ArchiveBucket:   getEnv("ARCHIVE_S3_BUCKET", ""),
		ArchivePrefix:   getEnv("ARCHIVE_S3_PREFIX", "resumes"),
		ArchiveKMSKeyID: getEnv("ARCHIVE_S3_KMS_KEY_ID", ""),
		AWSRegion:       getEnv("AWS_REGION", ""),
	}
}

// Validate reports configuration that must be present before the process serves traffic.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.GeminiAPIKey) == "" && strings.TrimSpace(c.OpenAIAPIKey) == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY or OPENAI_API_KEY is required"))
	}
	if !c.IsDevLike() && strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Env == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	switch c.DedupScope {
	case "owner", "global", "off":
	default:
		errs = append(errs, fmt.Errorf("DEDUP_SCOPE %q must be one of owner, global, off", c.DedupScope))
	}
	if c.QuotaLimit <= 0 {
		errs = append(errs, errors.New("RESUME_QUOTA_LIMIT must be positive"))
	}
	if c.MaxFileBytes <= 0 {
		errs = append(errs, errors.New("RESUME_MAX_FILE_BYTES must be positive"))
	}
	switch c.ArchiveBackend {
	case "", "local":
	case "s3":
		if strings.TrimSpace(c.ArchiveBucket) == "" {
			errs = append(errs, errors.New("ARCHIVE_S3_BUCKET is required when ARCHIVE_BACKEND=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("ARCHIVE_BACKEND %q must be one of local, s3", c.ArchiveBackend))
	}
	return errors.Join(errs...)
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if v, err := time.ParseDuration(raw); err == nil && v > 0 {
		return v
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
