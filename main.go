package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/doridoridoriand/pingtap/internal/cli"
	"github.com/doridoridoriand/pingtap/internal/config"
	"github.com/doridoridoriand/pingtap/internal/log"
	"github.com/doridoridoriand/pingtap/internal/metrics"
	"github.com/doridoridoriand/pingtap/internal/probe"
	"github.com/doridoridoriand/pingtap/internal/session"
	"github.com/doridoridoriand/pingtap/internal/ui"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configPath    string
	variant       cli.OptionalVariant
	resolver      cli.OptionalString
	noUI          cli.OptionalBool
	logDir        cli.OptionalString
	logLevel      cli.OptionalString
	metricsListen cli.OptionalString
	version       bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, error) {
	f := &flags{}
	fs := flag.NewFlagSet("pingtap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.configPath, "config", "", "TOML config file")
	fs.StringVar(&f.configPath, "c", "", "TOML config file")
	fs.Var(&f.variant, "variant", fmt.Sprintf("probe variant: %v (override config)", probe.Variants()))
	fs.Var(&f.resolver, "resolver", "DNS resolver host:port for the dns variant (override config)")
	fs.Var(&f.noUI, "no-ui", "probe the given targets once and print the results")
	fs.Var(&f.logDir, "log-dir", "write rotated JSON logs into this directory")
	fs.Var(&f.logLevel, "log-level", "log level: debug|info|warn|error")
	fs.Var(&f.metricsListen, "metrics-listen", "metrics listen address (e.g. :9100)")
	fs.BoolVar(&f.version, "version", false, "show version")
	fs.BoolVar(&f.version, "v", false, "show version")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: pingtap [options] [target ...]\n\n")
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, targets, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if f.version {
		fmt.Fprintf(stdout, "pingtap version %s\n", version)
		return 0
	}

	cfg, err := config.Load(f.configPath, buildOverrides(f))
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	logOpts := log.Options{
		Dir:      cfg.Logging.Dir,
		MaxMB:    cfg.Logging.MaxMB,
		MaxFiles: cfg.Logging.MaxFiles,
		Level:    cfg.Logging.Level,
	}
	if cfg.UI.Disable {
		logOpts.Console = stderr
	}
	logger, err := log.New(logOpts)
	if err != nil {
		fmt.Fprintf(stderr, "failed to open log: %v\n", err)
		return 1
	}
	defer logger.Close()
	if f.configPath != "" {
		logger.LogConfigLoad(true, f.configPath, nil)
	}

	prober, err := probe.New(cfg.Probe.Variant, probe.Options{Resolver: cfg.Probe.Resolver})
	if err != nil {
		fmt.Fprintf(stderr, "failed to create prober: %v\n", err)
		return 1
	}

	sess := session.New(prober, cfg.Probe.Variant, session.WithLogger(logger))
	switch {
	case len(targets) > 0:
		sess.SetInput(targets[0])
	case cfg.UI.DefaultTarget != "":
		sess.SetInput(cfg.UI.DefaultTarget)
	}

	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, sess); err != nil {
				logger.LogError("metrics", err, zap.String("listen", cfg.Metrics.Listen))
			}
		}()
	}

	if cfg.UI.Disable {
		return runHeadless(ctx, sess, targets, stdout, stderr)
	}

	err = ui.New(sess, logger).Run(ctx)
	sess.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.LogError("ui", err)
		fmt.Fprintf(stderr, "ui: %v\n", err)
		return 1
	}
	return 0
}

// runHeadless probes targets one after another and prints one line per result.
func runHeadless(ctx context.Context, sess *session.Session, targets []string, stdout, stderr io.Writer) int {
	if len(targets) == 0 {
		fmt.Fprintln(stderr, "no target given")
		return 1
	}

	code := 0
	for _, target := range targets {
		sess.SetInput(target)
		task, err := sess.Submit(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "%q: %v\n", target, err)
			code = 1
			continue
		}
		if _, err := task.Wait(ctx); err != nil {
			return 1
		}
		sess.Wait()

		entry := sess.Snapshot().Entries[0]
		fmt.Fprintln(stdout, entry.Line())
		if !entry.Result.Success {
			code = 1
		}
	}
	return code
}

func buildOverrides(f *flags) config.CLIOverrides {
	return config.CLIOverrides{
		Variant:       f.variant.Ptr(),
		Resolver:      f.resolver.Ptr(),
		UIDisable:     f.noUI.Ptr(),
		LogDir:        f.logDir.Ptr(),
		LogLevel:      f.logLevel.Ptr(),
		MetricsListen: f.metricsListen.Ptr(),
	}
}
