package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-thumbnail/internal/bridge"
	"video-thumbnail/internal/decoder"
	"video-thumbnail/internal/filesystem"
	"video-thumbnail/internal/handlers"
	"video-thumbnail/internal/logging"
	"video-thumbnail/internal/media"
	"video-thumbnail/internal/memory"
	"video-thumbnail/internal/metrics"
	"video-thumbnail/internal/middleware"
	"video-thumbnail/internal/startup"
	"video-thumbnail/internal/workers"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Set GOMEMLIMIT before significant allocations
	memory.ConfigureLimit(os.Getenv)

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics()
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	if err := media.InitVips(); err != nil {
		logging.Warn("libvips unavailable, WebP output will fail: %v", err)
	}

	backend := decoder.New(decoder.Config{
		FFmpegPath:       config.FFmpegPath,
		FFprobePath:      config.FFprobePath,
		ScaledExtraction: config.ScaledExtraction,
	})
	generator := media.NewGenerator(backend, config.CacheDir)
	generator.SetOutputRoot(config.OutputRoot)

	limit := config.MaxWorkers
	if limit == 0 {
		limit = workers.ForMixed(0)
	}
	pool := workers.NewPool(limit)
	startup.LogWorkerPool(pool.Limit())

	collector := metrics.NewCollector(pool, 5*time.Second)
	collector.Start()

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	dispatcher := bridge.NewDispatcher(generator, pool, config.RequestTimeout)
	dispatcher.SetGate(monitor)
	h := handlers.New(dispatcher, config)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	// Leave room to write the image after a request uses its full deadline
	var writeTimeout time.Duration
	if config.RequestTimeout > 0 {
		writeTimeout = config.RequestTimeout + 30*time.Second
	}

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	done := make(chan struct{})
	go func() {
		handleShutdown(srv, metricsSrv, h, pool, collector, monitor)
		close(done)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}

	<-done
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/thumbnail/{mode}", h.GenerateThumbnail).Methods("POST").Name("thumbnail")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, h *handlers.Handlers, pool *workers.Pool, collector *metrics.Collector, monitor *memory.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	h.SetShuttingDown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	// Release requests held back by memory pressure so the pool can drain
	monitor.Stop()

	startup.LogShutdownStep("Draining worker pool")
	pool.Shutdown()
	startup.LogShutdownStepComplete("Worker pool drained")

	collector.Stop()

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	media.ShutdownVips()
	startup.LogShutdownComplete()
}
