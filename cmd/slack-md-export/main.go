package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matillion/slack-md-export/internal/config"
	"github.com/matillion/slack-md-export/internal/dom"
	"github.com/matillion/slack-md-export/internal/download"
	"github.com/matillion/slack-md-export/internal/export"
	slackclient "github.com/matillion/slack-md-export/internal/slack"
)

var version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "print version and exit")
		pageURL     = flag.String("url", "", "conversation page URL (channel is parsed from it)")
		configPath  = flag.String("config", "", "path to a YAML config file (optional)")
		outDir      = flag.String("out", ".", "root directory for saved documents")
		snapshot    = flag.String("dom-snapshot", "", "rendered-page HTML file for the DOM fallback (optional)")
		channelName = flag.String("channel-name", "conversation", "display name used by the DOM fallback")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if *pageURL == "" {
		fmt.Fprintln(os.Stderr, "usage: slack-md-export -url <conversation URL> [-config file] [-out dir]")
		os.Exit(2)
	}

	logger := initLogger(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	var fallback export.Fallback
	if *snapshot != "" {
		raw, err := os.ReadFile(*snapshot)
		if err != nil {
			logger.Fatal("Failed to read DOM snapshot", zap.Error(err))
		}
		session := &dom.StaticSession{Name: *channelName, Document: string(raw)}
		fallback = dom.NewExtractor(session, logger)
	}

	// A client that cannot be built (missing credentials) is an API-path
	// failure like any other: the orchestrator falls back to the DOM path
	// when one is available, and only a run with neither is fatal here.
	var source export.HistorySource
	client, err := slackclient.NewClient(slackclient.Config{
		Token:  os.Getenv("SLACK_TOKEN"),
		Cookie: os.Getenv("SLACK_COOKIE"),
		Tuning: tuningFromConfig(cfg.Retry),
	}, logger)
	switch {
	case err == nil:
		source = client
	case fallback == nil:
		logger.Fatal("Failed to create Slack client", zap.Error(err))
	default:
		logger.Warn("Slack client unavailable, relying on DOM fallback", zap.Error(err))
	}

	sink := download.NewFileSink(*outDir, logger)
	orch := export.NewOrchestrator(source, fallback, sink, cfg, logger)

	result, err := orch.Run(context.Background(), *pageURL)
	if err != nil {
		logger.Fatal("Export failed", zap.Error(slackclient.WrapError(logger, "export", err)))
	}

	fmt.Printf("Exported %d messages from #%s to %s\n", result.MessageCount, result.Channel, result.Path)
}

func tuningFromConfig(r config.Retry) slackclient.Tuning {
	return slackclient.Tuning{
		MaxAttempts:      r.MaxAttempts,
		BackoffBase:      r.BackoffBase,
		PageDelay:        r.PageDelay,
		PageLimit:        r.PageLimit,
		UserBatchSize:    r.UserBatchSize,
		UserRequestDelay: r.UserRequestDelay,
		UserBatchDelay:   r.UserBatchDelay,
	}
}

func initLogger(level string) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		interpretLogLevel(level),
	)

	return zap.New(core, zap.AddCaller())
}

func interpretLogLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
