package startup

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"video-thumbnail/internal/logging"

	"github.com/gorilla/mux"
)

const rule = "------------------------------------------------------------"

func logSection(title string) {
	logging.Info("")
	logging.Info(rule)
	logging.Info("%s", title)
	logging.Info(rule)
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func outputRootString(root string) string {
	if root == "" {
		return "(unrestricted)"
	}
	return root
}

func logConfig(config *Config) {
	logging.Info("  CACHE_DIR:           %s", config.CacheDir)
	logging.Info("  OUTPUT_ROOT:         %s", outputRootString(config.OutputRoot))
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  FFMPEG_PATH:         %s", config.FFmpegPath)
	logging.Info("  FFPROBE_PATH:        %s", config.FFprobePath)
	logging.Info("  SCALED_EXTRACTION:   %v", config.ScaledExtraction)
	logging.Info("  MAX_WORKERS:         %d", config.MaxWorkers)
	logging.Info("  REQUEST_TIMEOUT:     %v", config.RequestTimeout)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
}

// LogWorkerPool logs the worker pool sizing
func LogWorkerPool(limit int) {
	logSection("WORKER POOL")
	logging.Info("  Max concurrent extractions: %d", limit)
}

// RouteInfo describes one method/path pair registered on a router.
type RouteInfo struct {
	Method string
	Path   string
}

// GetRoutes lists the routes registered on router. Routes without a method
// matcher are reported with method "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		// Subrouter prefixes carry no handler
		if route.GetHandler() == nil {
			return nil
		}
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: path})
		}
		return nil
	})
	return routes, err
}

// LogHTTPRoutes logs the registered routes and access log settings.
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logSection("HTTP SERVER SETUP")

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("  error walking routes: %v", err)
	}
	for _, route := range routes {
		logging.Info("  %-6s %s", route.Method, route.Path)
	}

	if logHealthChecks {
		logging.Info("  Health check logging: ON")
	} else {
		logging.Info("  Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs the listening endpoints and startup duration.
func LogServerStarted(config ServerConfig) {
	logSection("SERVER STARTED")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("  Application:     http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:         http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info(rule)
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logSection(fmt.Sprintf("SHUTDOWN INITIATED (received %s)", signal))
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
 _   _ _     _              _____ _                     _
| | | (_) __| | ___  ___   |_   _| |__  _   _ _ __ ___ | |__
| | | | |/ _' |/ _ \/ _ \    | | | '_ \| | | | '_ ' _ \| '_ \
 \ V /| | (_| |  __/ (_) |   | | | | | | |_| | | | | | | |_) |
  \_/ |_|\__,_|\___|\___/    |_| |_| |_|\__,_|_| |_| |_|_.__/

------------------------------------------------------------`
	logging.Printf("%s", banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	logSection("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))
	if hostname, err := os.Hostname(); err == nil {
		logging.Debug("  Hostname:        %s", hostname)
	}
}
