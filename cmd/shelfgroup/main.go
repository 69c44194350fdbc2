package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ironsheep/shelfgroup/internal/config"
	"github.com/ironsheep/shelfgroup/internal/detection"
	"github.com/ironsheep/shelfgroup/internal/pipeline"
	"github.com/ironsheep/shelfgroup/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		logger *zap.Logger
		runner *pipeline.Runner
	)

	app := &cli.App{
		Name:    "shelfgroup",
		Usage:   "group detected products by appearance and shelf row",
		Version: fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML file overriding grouping thresholds",
				EnvVars: []string{"SHELFGROUP_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"SHELFGROUP_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "write logs to a rotated file instead of stderr",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			logger, err = newLogger(c.String("log-level"), c.String("log-file"))
			if err != nil {
				return err
			}
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			runner = pipeline.NewRunner(cfg, logger.Sugar())
			return nil
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "group",
				Usage: "group the detections of one image and render the result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "image", Usage: "image the detections refer to", Required: true},
					&cli.StringFlag{Name: "detections", Usage: "JSON file with detector output, - for stdin", Value: "-"},
					&cli.StringFlag{Name: "output", Usage: "visualization path (default detected_<name> beside the image)"},
				},
				Action: func(c *cli.Context) error {
					dets, err := readDetections(c.String("detections"))
					if err != nil {
						return err
					}
					report, err := runner.Run(c.Context, pipeline.Job{
						ImagePath:  c.String("image"),
						Detections: dets,
						OutputPath: c.String("output"),
					})
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, report)
				},
			},
			{
				Name:  "batch",
				Usage: "run a manifest of group jobs concurrently",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "manifest", Usage: "JSON array of {image_path, detections, output_path}", Required: true},
					&cli.IntFlag{Name: "workers", Usage: "jobs in flight", Value: runtime.NumCPU()},
				},
				Action: func(c *cli.Context) error {
					data, err := os.ReadFile(c.String("manifest"))
					if err != nil {
						return errors.Wrap(err, "failed to read manifest")
					}
					var jobs []pipeline.Job
					if err := json.Unmarshal(data, &jobs); err != nil {
						return errors.Wrap(err, "failed to parse manifest")
					}
					reports, runErr := runner.RunBatch(c.Context, jobs, c.Int("workers"))
					if err := writeJSON(c.App.Writer, reports); err != nil {
						return err
					}
					return runErr
				},
			},
			{
				Name:  "version",
				Usage: "print build information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "shelfgroup %s\n", Version)
					fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
					fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
					return nil
				},
			},
			{
				Name:  "serve",
				Usage: "serve the grouping tools over MCP on stdin/stdout",
				Action: func(c *cli.Context) error {
					srv := server.New(runner, server.WithLogger(logger.Sugar().Named("server")))
					err := srv.Run(c.Context)
					if errors.Is(err, context.Canceled) {
						// Interrupt or SIGTERM is a normal shutdown.
						logger.Info("server stopped")
						return nil
					}
					return err
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "shelfgroup: %v\n", err)
		os.Exit(1)
	}
}

// newLogger logs to stderr, or to a rotated file, never to stdout: stdout
// carries JSON results and the MCP protocol.
func newLogger(level, file string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if file != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		})
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zap.New(zapcore.NewCore(encoder, sink, lvl), zap.AddCaller()), nil
}

func readDetections(path string) ([]detection.Detection, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read detections")
	}
	return detection.Parse(data)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
