package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/NexusGPU/powerhal/internal/constants"
	"github.com/NexusGPU/powerhal/internal/powerhal/config"
	"github.com/NexusGPU/powerhal/internal/powerhal/hal"
	"github.com/NexusGPU/powerhal/internal/powerhal/metrics"
	"github.com/NexusGPU/powerhal/internal/powerhal/perfd"
	"github.com/NexusGPU/powerhal/internal/powerhal/server"
	"github.com/NexusGPU/powerhal/internal/powerhal/soc"
	"github.com/NexusGPU/powerhal/internal/powerhal/sysfs"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"
)

var (
	configPath   = flag.String("config", "", "Path to an optional YAML config file")
	perfdLibPath = flag.String("perfd-lib", perfd.DefaultLibraryPath, "Path to the perf daemon client library")
	sysfsRoot    = flag.String("sysfs-root", constants.DefaultSysfsRoot, "sysfs mount point")
	dryRun       = flag.Bool("dry-run", false, "Log perf daemon requests instead of sending them")

	metricsPath     = flag.String("metrics-output-path", constants.DefaultMetricsPath, "Path to metrics output file, empty disables it")
	metricsInterval = flag.Duration("metrics-interval", constants.DefaultMetricsInterval, "Metrics recording interval")

	httpPort = flag.Int("port", constants.DefaultPort, "HTTP port for the hint API")
)

// loadConfig merges the config file, explicitly set flags and env vars, in that order
func loadConfig() *config.Config {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			klog.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	var interval *time.Duration
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "perfd-lib":
			cfg.PerfdLibraryPath = *perfdLibPath
		case "sysfs-root":
			cfg.SysfsRoot = *sysfsRoot
		case "dry-run":
			cfg.DryRun = *dryRun
		case "metrics-output-path":
			cfg.Metrics.OutputPath = *metricsPath
		case "metrics-interval":
			interval = ptr.To(*metricsInterval)
		case "port":
			cfg.Port = *httpPort
		}
	})
	if interval != nil {
		cfg.Metrics.Interval = interval.String()
	}

	if envLibPath := os.Getenv(constants.PerfdLibraryEnv); envLibPath != "" {
		cfg.PerfdLibraryPath = envLibPath
		klog.Infof("Using perfd client library path from env: %s", envLibPath)
	}
	if envSysfsRoot := os.Getenv(constants.SysfsRootEnv); envSysfsRoot != "" {
		cfg.SysfsRoot = envSysfsRoot
		klog.Infof("Using sysfs root from env: %s", envSysfsRoot)
	}
	if httpPortEnv := os.Getenv(constants.PortEnv); httpPortEnv != "" {
		port, err := strconv.Atoi(httpPortEnv)
		if err != nil {
			klog.Fatalf("Failed to convert HTTP port from env: %v", err)
		}
		cfg.Port = port
	}

	if err := cfg.Normalize(); err != nil {
		klog.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func openLibrary(cfg *config.Config) perfd.Library {
	if cfg.DryRun {
		klog.Warning("Running in dry-run mode, perf daemon requests are only logged")
		return perfd.NewDryRunLibrary()
	}
	lib, err := perfd.NewNativeLibrary(cfg.PerfdLibraryPath)
	if err != nil {
		klog.Fatalf("Failed to load perfd client library: %v", err)
	}
	return lib
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	klog.Info("power HAL starting")

	cfg := loadConfig()

	client := perfd.NewClient(openLibrary(cfg))
	defer func() {
		if err := client.Close(); err != nil {
			klog.Errorf("Error closing perfd client: %v", err)
		}
	}()

	reader := sysfs.NewReader(cfg.SysfsRoot)
	governors := sysfs.NewGovernorDetector(reader)
	identifier := soc.NewIdentifier(reader)
	if identity, err := identifier.Identify(); err != nil {
		klog.Warningf("soc_id unreadable, default tuning tables will be used: %v", err)
	} else {
		klog.Infof("Detected soc_id %d (low-end variant: %t)", identity.ID, identity.LowEnd)
	}

	collectors := metrics.NewCollectors()
	powerHAL := hal.New(hal.Options{
		Daemon:    metrics.NewInstrumentedDaemon(client, collectors),
		Governors: governors,
		Platform:  identifier,
		ModeHints: cfg.ModeHintTable(),
		Observer:  collectors,
	})
	klog.Info("Power HAL initialized")

	if cfg.Metrics.OutputPath != "" {
		recorder := metrics.NewRecorder(cfg.Metrics.OutputPath, cfg.Metrics.IntervalDuration(), cfg.SysfsRoot, powerHAL)
		recorder.Start(ctx)
		klog.Info("Metrics recorder started")
	}

	httpServer := server.NewServer(powerHAL, client, identifier, governors, cfg.DryRun, collectors.Handler(), cfg.Port)
	go func() {
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			klog.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()
	klog.Info("HTTP server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	klog.Info("Power HAL running")
	<-sigCh
	klog.Info("Stopping power HAL...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		klog.Errorf("Error shutting down HTTP server: %v", err)
	}

	if err := powerHAL.Close(); err != nil {
		klog.Errorf("Error releasing perf daemon requests: %v", err)
	}

	cancel()
	klog.Info("Power HAL stopped")
}
