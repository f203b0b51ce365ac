package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hara602/usnSentry/internal/config"
	"github.com/Hara602/usnSentry/internal/exclusion"
	"github.com/Hara602/usnSentry/internal/metrics"
	"github.com/Hara602/usnSentry/internal/monitor"
	"github.com/Hara602/usnSentry/internal/sink"
	"github.com/Hara602/usnSentry/internal/sysutil"
	"github.com/Hara602/usnSentry/internal/volume"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "path to a TOML config file")
	volumes := flag.String("volumes", "", "comma separated drive letters to monitor (default: all eligible)")
	bufferSize := flag.Int("buffer-size", config.Defaults.BufferSize, "journal read buffer size in bytes")
	requery := flag.Duration("requery-backoff", config.Defaults.RequeryBackoff.Duration, "delay between failed journal re-queries")
	transient := flag.Duration("transient-backoff", config.Defaults.TransientBackoff.Duration, "delay before retrying a failed read")
	excludeSystem := flag.Bool("exclude-system", false, "drop system and temp file events")
	exclusionDB := flag.String("exclusion-db", "", "sqlite database with extra exclusion rules")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	vals, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	// 命令行上显式给出的参数覆盖配置文件
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "volumes":
			vals.Volumes = config.ParseVolumes(*volumes)
		case "buffer-size":
			vals.BufferSize = *bufferSize
		case "requery-backoff":
			vals.RequeryBackoff = config.Duration{Duration: *requery}
		case "transient-backoff":
			vals.TransientBackoff = config.Duration{Duration: *transient}
		case "exclude-system":
			vals.ExcludeSystemFiles = *excludeSystem
		case "exclusion-db":
			vals.ExclusionDB = *exclusionDB
		case "metrics-addr":
			vals.MetricsAddr = *metricsAddr
		case "debug":
			vals.DebugLogging = *debug
		}
	})
	if err := vals.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// 初始化日志
	sysutil.InitLogger(vals.DebugLogging)
	defer sysutil.Log.Sync()

	sysutil.Log.Info("🛡️ NTFS USN Journal Realtime Monitor Starting...")

	filter, err := exclusion.LoadFilter(vals.ExcludeSystemFiles, vals.ExclusionDB)
	if err != nil {
		sysutil.Log.Fatal("Exclusion rules init failed", zap.Error(err))
	}
	sysutil.Log.Info("Exclusion filter", zap.Bool("enabled", filter.Enabled()))

	vols, err := volume.Discover(volume.NewProber(), sysutil.Log, vals.Volumes...)
	if err != nil {
		sysutil.Log.Fatal("Volume discovery failed", zap.Error(err))
	}
	if len(vols) == 0 {
		sysutil.Log.Fatal("No eligible NTFS volumes found")
	}
	for _, v := range vols {
		sysutil.Log.Info("🔍 Found NTFS volume", zap.String("volume", v.Name()), zap.Stringer("type", v.DriveType))
	}
	sysutil.LogSugar.Infof("Monitoring %d volume(s), buffer %d bytes", len(vols), vals.BufferSize)

	// 捕获操作系统信号，取消所有 worker 的阻塞读取
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if vals.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, vals.MetricsAddr); err != nil {
				sysutil.Log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		sysutil.Log.Info("📈 Metrics enabled", zap.String("addr", vals.MetricsAddr))
	}

	fileMon := monitor.New(monitor.Config{
		Sink:   sink.NewLineSink(os.Stdout),
		Filter: filter,
		Log:    sysutil.Log,
		Options: monitor.Options{
			BufferSize:       vals.BufferSize,
			RequeryBackoff:   vals.RequeryBackoff.Duration,
			TransientBackoff: vals.TransientBackoff.Duration,
		},
	})
	fileMon.Start(ctx, vols)

	select {
	case <-ctx.Done():
		sysutil.Log.Info("Shutting down...")
		waitStopped(fileMon)
	case <-fileMon.Done():
		// 所有卷都打开失败或初始查询失败，没有可监控的卷
		sysutil.Log.Error("All volume workers exited")
		sysutil.Log.Sync()
		os.Exit(1)
	}
}

func waitStopped(m monitor.FileMonitor) {
	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		sysutil.Log.Warn("Timed out waiting for volume workers")
	}
}
