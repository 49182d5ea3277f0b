package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gayabelajar-api/internal/common"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	HTTPAddr        string
	BaseDir         string
	ModelPath       string
	ScalerPath      string
	AdvisoryFile    string
	LogLevel        string
	LogFormat       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
}

type ConfigFile struct {
	Server struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"readTimeout"`
		WriteTimeout    string `yaml:"writeTimeout"`
		ShutdownTimeout string `yaml:"shutdownTimeout"`
		MetricsEnabled  *bool  `yaml:"metricsEnabled"`
	} `yaml:"server"`

	Model struct {
		BaseDir      string `yaml:"baseDir"`
		ModelPath    string `yaml:"modelPath"`
		ScalerPath   string `yaml:"scalerPath"`
		AdvisoryFile string `yaml:"advisoryFile"`
	} `yaml:"model"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Load reads .env if present, then the YAML file named by CONFIG_FILE, or
// the environment alone when CONFIG_FILE is unset. Environment variables
// always override file values.
func Load() (Settings, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Settings{}, err
	}

	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	readTimeout, err := parseDurationOr(config.Server.ReadTimeout, common.DefaultReadTimeout)
	if err != nil {
		return Settings{}, fmt.Errorf("server.readTimeout: %w", err)
	}
	writeTimeout, err := parseDurationOr(config.Server.WriteTimeout, common.DefaultWriteTimeout)
	if err != nil {
		return Settings{}, fmt.Errorf("server.writeTimeout: %w", err)
	}
	shutdownTimeout, err := parseDurationOr(config.Server.ShutdownTimeout, common.DefaultShutdownTimeout)
	if err != nil {
		return Settings{}, fmt.Errorf("server.shutdownTimeout: %w", err)
	}

	metricsEnabled := true
	if config.Server.MetricsEnabled != nil {
		metricsEnabled = *config.Server.MetricsEnabled
	}

	baseDir := getEnvOrDefault(common.EnvBaseDir, config.Model.BaseDir)
	if baseDir == "" {
		baseDir = defaultBaseDir()
	}

	settings := Settings{
		HTTPAddr:        httpAddr(orDefault(config.Server.Addr, common.DefaultHTTPAddr)),
		BaseDir:         baseDir,
		ModelPath:       getEnvOrDefault(common.EnvModelPath, orDefault(config.Model.ModelPath, common.DefaultModelPath)),
		ScalerPath:      getEnvOrDefault(common.EnvScalerPath, orDefault(config.Model.ScalerPath, common.DefaultScalerPath)),
		AdvisoryFile:    getEnvOrDefault(common.EnvAdvisoryFile, config.Model.AdvisoryFile),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, orDefault(config.Logging.Level, common.DefaultLogLevel)),
		LogFormat:       getEnvOrDefault(common.EnvLogFormat, orDefault(config.Logging.Format, common.DefaultLogFormat)),
		ReadTimeout:     getDurationOrDefault(common.EnvReadTimeout, readTimeout),
		WriteTimeout:    getDurationOrDefault(common.EnvWriteTimeout, writeTimeout),
		ShutdownTimeout: getDurationOrDefault(common.EnvShutdownTimeout, shutdownTimeout),
		MetricsEnabled:  getBoolOrDefault(common.EnvMetricsEnabled, metricsEnabled),
	}
	settings.resolvePaths()

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	readTimeout, _ := time.ParseDuration(common.DefaultReadTimeout)
	writeTimeout, _ := time.ParseDuration(common.DefaultWriteTimeout)
	shutdownTimeout, _ := time.ParseDuration(common.DefaultShutdownTimeout)

	settings := Settings{
		HTTPAddr:        httpAddr(common.DefaultHTTPAddr),
		BaseDir:         getEnvOrDefault(common.EnvBaseDir, defaultBaseDir()),
		ModelPath:       getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		ScalerPath:      getEnvOrDefault(common.EnvScalerPath, common.DefaultScalerPath),
		AdvisoryFile:    os.Getenv(common.EnvAdvisoryFile), // optional
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFormat:       getEnvOrDefault(common.EnvLogFormat, common.DefaultLogFormat),
		ReadTimeout:     getDurationOrDefault(common.EnvReadTimeout, readTimeout),
		WriteTimeout:    getDurationOrDefault(common.EnvWriteTimeout, writeTimeout),
		ShutdownTimeout: getDurationOrDefault(common.EnvShutdownTimeout, shutdownTimeout),
		MetricsEnabled:  getBoolOrDefault(common.EnvMetricsEnabled, true),
	}
	settings.resolvePaths()

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// resolvePaths makes artifact paths absolute relative to BaseDir.
func (s *Settings) resolvePaths() {
	s.ModelPath = resolvePath(s.BaseDir, s.ModelPath)
	s.ScalerPath = resolvePath(s.BaseDir, s.ScalerPath)
	if s.AdvisoryFile != "" {
		s.AdvisoryFile = resolvePath(s.BaseDir, s.AdvisoryFile)
	}
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.HTTPAddr == "" {
		return fmt.Errorf("HTTP address cannot be empty")
	}
	if settings.ModelPath == "" || settings.ScalerPath == "" {
		return fmt.Errorf("model and scaler paths are required")
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(settings.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", settings.LogLevel)
	}
	switch settings.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", settings.LogFormat)
	}

	minTimeout := common.MinTimeoutSeconds * time.Second
	maxTimeout := common.MaxTimeoutSeconds * time.Second
	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"read timeout", settings.ReadTimeout},
		{"write timeout", settings.WriteTimeout},
		{"shutdown timeout", settings.ShutdownTimeout},
	}
	for _, tt := range timeouts {
		if tt.value < minTimeout || tt.value > maxTimeout {
			return fmt.Errorf("%s must be between %v and %v, got %v", tt.name, minTimeout, maxTimeout, tt.value)
		}
	}

	return nil
}
