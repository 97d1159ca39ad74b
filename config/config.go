package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and read-only thereafter. Every component
// receives the values it needs at construction; nothing reads the
// environment after Load returns.
type Config struct {
	Port     int
	APIToken string
	DataDir  string

	AnalysisBaseURL string
	AnalysisAPIKey  string
	AnalysisModel   string

	TranscodeWorkers int
	RetryMaxRetries  uint64
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	// TargetFPS forces the timeline frame rate; 0 means pick the majority
	// rate of the plan's source clips.
	TargetFPS float64
	// HFRThreshold is the minimum source fps for speed-ramp eligibility.
	HFRThreshold float64

	ProxyMaxBytes    int64
	ProxyMaxLongEdge int

	// EditHostImportDir is the drop location watched by the editing host.
	// Empty means no host is attached; builds then report manual import.
	EditHostImportDir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "7893"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	apiKey := os.Getenv("ANALYSIS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANALYSIS_API_KEY is required")
	}

	workers, err := strconv.Atoi(getEnv("TRANSCODE_WORKERS", "2"))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("invalid TRANSCODE_WORKERS: %q", getEnv("TRANSCODE_WORKERS", "2"))
	}

	maxRetries, err := strconv.ParseUint(getEnv("RETRY_MAX_RETRIES", "4"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_MAX_RETRIES: %w", err)
	}

	targetFPS, err := strconv.ParseFloat(getEnv("TARGET_FPS", "0"), 64)
	if err != nil || targetFPS < 0 {
		return nil, fmt.Errorf("invalid TARGET_FPS: %q", getEnv("TARGET_FPS", "0"))
	}

	hfr, err := strconv.ParseFloat(getEnv("HFR_THRESHOLD", "60"), 64)
	if err != nil || hfr <= 0 {
		return nil, fmt.Errorf("invalid HFR_THRESHOLD: %q", getEnv("HFR_THRESHOLD", "60"))
	}

	proxyMaxBytes, err := strconv.ParseInt(getEnv("PROXY_MAX_BYTES", strconv.FormatInt(2<<30, 10)), 10, 64)
	if err != nil || proxyMaxBytes <= 0 {
		return nil, fmt.Errorf("invalid PROXY_MAX_BYTES: %q", os.Getenv("PROXY_MAX_BYTES"))
	}

	longEdge, err := strconv.Atoi(getEnv("PROXY_MAX_LONG_EDGE", "1280"))
	if err != nil || longEdge <= 0 {
		return nil, fmt.Errorf("invalid PROXY_MAX_LONG_EDGE: %q", os.Getenv("PROXY_MAX_LONG_EDGE"))
	}

	return &Config{
		Port:              port,
		APIToken:          os.Getenv("API_TOKEN"),
		DataDir:           getEnv("DATA_DIR", "data"),
		AnalysisBaseURL:   getEnv("ANALYSIS_BASE_URL", "https://generativelanguage.googleapis.com"),
		AnalysisAPIKey:    apiKey,
		AnalysisModel:     getEnv("ANALYSIS_MODEL", "gemini-3-flash-preview"),
		TranscodeWorkers:  workers,
		RetryMaxRetries:   maxRetries,
		RetryBaseDelay:    time.Second,
		RetryMaxDelay:     30 * time.Second,
		TargetFPS:         targetFPS,
		HFRThreshold:      hfr,
		ProxyMaxBytes:     proxyMaxBytes,
		ProxyMaxLongEdge:  longEdge,
		EditHostImportDir: os.Getenv("EDIT_HOST_IMPORT_DIR"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
