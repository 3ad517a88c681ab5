package config

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"
)

// Session backends
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

// Config holds application configuration
type Config struct {
	APIBaseURL     string        `json:"apiBaseUrl"`
	AIBaseURL      string        `json:"aiBaseUrl"`
	ListenAddr     string        `json:"listenAddr"`
	AutosaveDelay  time.Duration `json:"autosaveDelay"`
	RequestTimeout time.Duration `json:"requestTimeout"`

	SessionBackend string `json:"sessionBackend"`
	TokenPath      string `json:"tokenPath"`
	RedisURL       string `json:"redisUrl"`

	DraftsPath string `json:"draftsPath"`
	ExportDir  string `json:"exportDir"`
	PageFormat string `json:"pageFormat"`
	ChromePath string `json:"chromePath"`

	S3Endpoint  string `json:"s3Endpoint"`
	S3Bucket    string `json:"s3Bucket"`
	S3AccessKey string `json:"s3AccessKey"`
	S3SecretKey string `json:"-"`
	S3UseSSL    bool   `json:"s3UseSsl"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	dir := GetConfigDir()
	return &Config{
		APIBaseURL:     "http://localhost:5000/api",
		AIBaseURL:      "https://note-maker-ai-service.onrender.com",
		ListenAddr:     "127.0.0.1:5174",
		AutosaveDelay:  900 * time.Millisecond,
		RequestTimeout: 15 * time.Second,
		SessionBackend: SessionBackendFile,
		TokenPath:      filepath.Join(dir, "token"),
		DraftsPath:     filepath.Join(dir, "drafts.db"),
		ExportDir:      GetDefaultExportDir(),
		PageFormat:     "a4",
	}
}

// GetConfigDir returns ~/.config/notemaster, creating it when possible
func GetConfigDir() string {
	currentUser, err := user.Current()
	if err != nil {
		return "./data"
	}

	configPath := filepath.Join(currentUser.HomeDir, ".config", "notemaster")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return "./data"
	}
	return configPath
}

// GetDefaultExportDir returns the default directory for exported files
func GetDefaultExportDir() string {
	currentUser, err := user.Current()
	if err != nil {
		return "./exports"
	}
	return filepath.Join(currentUser.HomeDir, "Documents", "NoteMaster")
}

// GetConfigFilePath returns the path where the config file should be stored
func GetConfigFilePath() string {
	if p := os.Getenv("NOTEMASTER_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(GetConfigDir(), "config")
}

// Load loads configuration from file, then applies environment overrides
func Load() (*Config, error) {
	cfg := Defaults()

	if data, err := os.ReadFile(GetConfigFilePath()); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIBaseURL = envOr("NOTEMASTER_API_URL", c.APIBaseURL)
	c.AIBaseURL = envOr("NOTEMASTER_AI_URL", c.AIBaseURL)
	c.ListenAddr = envOr("NOTEMASTER_LISTEN_ADDR", c.ListenAddr)
	c.AutosaveDelay = parseDurationOr("NOTEMASTER_AUTOSAVE_DELAY", c.AutosaveDelay)
	c.RequestTimeout = parseDurationOr("NOTEMASTER_REQUEST_TIMEOUT", c.RequestTimeout)
	c.SessionBackend = envOr("NOTEMASTER_SESSION_BACKEND", c.SessionBackend)
	c.TokenPath = envOr("NOTEMASTER_TOKEN_PATH", c.TokenPath)
	c.RedisURL = envOr("REDIS_URL", c.RedisURL)
	c.DraftsPath = envOr("NOTEMASTER_DRAFTS_PATH", c.DraftsPath)
	c.ExportDir = envOr("NOTEMASTER_EXPORT_DIR", c.ExportDir)
	c.PageFormat = envOr("NOTEMASTER_PAGE_FORMAT", c.PageFormat)
	c.ChromePath = envOr("NOTEMASTER_CHROME_PATH", c.ChromePath)
	c.S3Endpoint = envOr("NOTEMASTER_S3_ENDPOINT", c.S3Endpoint)
	c.S3Bucket = envOr("NOTEMASTER_S3_BUCKET", c.S3Bucket)
	c.S3AccessKey = envOr("NOTEMASTER_S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = envOr("NOTEMASTER_S3_SECRET_KEY", c.S3SecretKey)
	c.S3UseSSL = parseBoolOr("NOTEMASTER_S3_USE_SSL", c.S3UseSSL)
}

// Save saves the configuration to file
func (c *Config) Save() error {
	configFile := GetConfigFilePath()

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configFile, data, 0644)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func parseBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
