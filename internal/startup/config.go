package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"video-thumbnail/internal/logging"

	"github.com/spf13/viper"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	CacheDir         string
	OutputRoot       string
	Port             string
	MetricsPort      string
	MetricsEnabled   bool
	FFmpegPath       string
	FFprobePath      string
	ScaledExtraction bool
	MaxWorkers       int
	RequestTimeout   time.Duration
	LogHealthChecks  bool

	// Set by LoadConfig after probing the tools
	FFmpegAvailable  bool
	FFprobeAvailable bool
}

const defaultRequestTimeout = 60 * time.Second

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache_dir", filepath.Join(os.TempDir(), "video-thumbnail"))
	v.SetDefault("output_root", "")
	v.SetDefault("port", "8080")
	v.SetDefault("metrics_port", "9090")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("ffmpeg_path", "ffmpeg")
	v.SetDefault("ffprobe_path", "ffprobe")
	v.SetDefault("scaled_extraction", true)
	v.SetDefault("max_workers", 0)
	v.SetDefault("request_timeout", defaultRequestTimeout.String())
	v.SetDefault("log_health_checks", false)
}

// newViper builds a viper instance reading environment variables and, when
// CONFIG_FILE is set, a YAML or JSON file. Environment variables win.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		logging.Info("  Config file:         %s", v.ConfigFileUsed())
	}
	return v, nil
}

// configFromViper decodes and validates configuration values. Invalid
// timeouts and worker counts fall back to their defaults.
func configFromViper(v *viper.Viper) (*Config, error) {
	timeoutStr := v.GetString("request_timeout")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout < 0 {
		logging.Warn("  Invalid REQUEST_TIMEOUT %q, using default: %v", timeoutStr, defaultRequestTimeout)
		timeout = defaultRequestTimeout
	}

	maxWorkers := v.GetInt("max_workers")
	if maxWorkers < 0 {
		logging.Warn("  Invalid MAX_WORKERS %d, using default", maxWorkers)
		maxWorkers = 0
	}

	cacheDir, err := filepath.Abs(v.GetString("cache_dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}

	var outputRoot string
	if root := v.GetString("output_root"); root != "" {
		outputRoot, err = filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve output root path: %w", err)
		}
	}

	return &Config{
		CacheDir:         cacheDir,
		OutputRoot:       outputRoot,
		Port:             v.GetString("port"),
		MetricsPort:      v.GetString("metrics_port"),
		MetricsEnabled:   v.GetBool("metrics_enabled"),
		FFmpegPath:       v.GetString("ffmpeg_path"),
		FFprobePath:      v.GetString("ffprobe_path"),
		ScaledExtraction: v.GetBool("scaled_extraction"),
		MaxWorkers:       maxWorkers,
		RequestTimeout:   timeout,
		LogHealthChecks:  v.GetBool("log_health_checks"),
	}, nil
}

// LoadConfig loads configuration, prepares the cache directory and probes
// ffmpeg and ffprobe. Missing tools are reported, not fatal: readiness
// stays false until ffmpeg is usable.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logSection("CONFIGURATION")
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	config, err := configFromViper(v)
	if err != nil {
		return nil, err
	}
	logConfig(config)

	logSection("DIRECTORY SETUP")
	logging.Info("  Cache directory: %s", config.CacheDir)
	if !setupOptionalDir(config.CacheDir, "cache") {
		logging.Warn("  Remote sources without a destination path will fail")
	}

	logSection("TOOLS")
	config.FFmpegAvailable = probeTool("ffmpeg", config.FFmpegPath)
	config.FFprobeAvailable = probeTool("ffprobe", config.FFprobePath)
	if !config.FFmpegAvailable {
		logging.Warn("  Thumbnail extraction will fail until ffmpeg is installed")
	}
	if !config.FFprobeAvailable {
		logging.Warn("  Durations of non-MP4 sources are unavailable; fallback frames use 0ms")
	}

	return config, nil
}

// setupOptionalDir creates path and checks it is writable.
func setupOptionalDir(path, name string) bool {
	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		return false
	}

	f, err := os.CreateTemp(path, ".write-test-*")
	if err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		return false
	}
	_ = f.Close()
	if err := os.Remove(f.Name()); err != nil {
		logging.Warn("    failed to remove test file %s: %v", f.Name(), err)
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

// probeTool resolves a tool binary and logs the first line of its -version
// output.
func probeTool(name, path string) bool {
	version, err := toolVersion(path)
	if err != nil {
		logging.Warn("  [MISSING] %s: %v", name, err)
		return false
	}
	logging.Info("  [OK] %s", version)
	return true
}

func toolVersion(path string) (string, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, resolved, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version failed: %w", resolved, err)
	}
	first, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(first), nil
}
