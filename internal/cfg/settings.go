package cfg

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gayabelajar-api/internal/common"
)

// Helper functions
func getEnvOrDefault(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func orDefault(value, defaultVal string) string {
	if value == "" {
		return defaultVal
	}
	return value
}

func parseDurationOr(value, defaultVal string) (time.Duration, error) {
	return time.ParseDuration(orDefault(value, defaultVal))
}

// httpAddr picks the listen address: HTTP_ADDR wins, then PORT as ":PORT",
// then the given fallback.
func httpAddr(fallback string) string {
	if addr := os.Getenv(common.EnvHTTPAddr); addr != "" {
		return addr
	}
	if port := strings.TrimSpace(os.Getenv(common.EnvPort)); port != "" {
		return ":" + strings.TrimPrefix(port, ":")
	}
	return fallback
}

// defaultBaseDir is the directory holding the running binary, falling back
// to the working directory.
func defaultBaseDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
