package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"grove/internal/classifier"
	"grove/internal/config"
	"grove/internal/httpapi"
	"grove/internal/manager"
	"grove/internal/provision"
)

// resolveConfig applies Default < config file < environment < flags.
func resolveConfig(opts *options, lookup func(string) string) (config.Config, error) {
	cfg := config.Default()
	path := opts.configPath
	if path == "" {
		path = strings.TrimSpace(lookup(config.EnvPrefix + "CONFIG"))
	}
	if path != "" {
		fc, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = cfg.Merge(fc)
	}
	ec, err := config.FromEnv(lookup)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.Merge(ec).Merge(opts.flags)
	if cfg, err = cfg.ExpandPaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the root logger from log_level and log_format.
func newLogger(cfg config.Config, w io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log_level: %w", err)
		}
		lvl = parsed
	}
	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "grove").Logger(), nil
}

func artifacts(cfg config.Config) (model, labels provision.Artifact) {
	model = provision.Artifact{Name: "model", URL: cfg.ModelURL, Path: cfg.ModelPath, SHA256: strings.ToLower(cfg.ModelSHA256)}
	labels = provision.Artifact{Name: "labels", URL: cfg.LabelsURL, Path: cfg.ResolvedLabelsPath()}
	return model, labels
}

func newProvisioner(cfg config.Config, log zerolog.Logger) *provision.Provisioner {
	return provision.New(provision.Config{
		Logger:    log.With().Str("component", "provision").Logger(),
		UserAgent: "grove/" + version,
		Timeout:   cfg.DownloadTimeout(),
	})
}

func newManager(cfg config.Config, log zerolog.Logger) *manager.Manager {
	model, labels := artifacts(cfg)
	return manager.NewWithConfig(manager.ManagerConfig{
		Model:          model,
		Labels:         labels,
		Provisioner:    newProvisioner(cfg, log),
		Runtime:        classifier.Options{Sessions: cfg.Sessions, LibraryPath: cfg.ONNXLibrary},
		Logger:         log.With().Str("component", "manager").Logger(),
		TmpDir:         cfg.TmpDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxPixels:      cfg.MaxPixels,
		MaxQueueDepth:  cfg.MaxQueueDepth,
		MaxWait:        cfg.MaxWait(),
		DrainTimeout:   cfg.DrainTimeout(),
	})
}

// runServe starts the HTTP server right away so health probes answer while
// the model is provisioned and loaded in the background. A provisioning or
// load failure stops the process.
func runServe(ctx context.Context, opts *options, out io.Writer) error {
	cfg, err := resolveConfig(opts, os.Getenv)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, out)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetMaxUploadBytes(cfg.MaxUploadBytes)
	httpapi.SetPredictTimeoutSeconds(int64(cfg.PredictTimeoutSeconds))
	httpapi.SetCORSOptions(len(cfg.AllowedOrigins) > 0, cfg.AllowedOrigins, nil, nil)
	httpapi.SetBaseContext(ctx)

	mgr := newManager(cfg, log)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("model", cfg.ModelPath).Msg("grove listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()
	go func() {
		if err := mgr.Start(ctx); err != nil {
			errCh <- fmt.Errorf("start model: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-errCh:
		if ctx.Err() != nil {
			runErr = nil
		} else {
			log.Error().Err(runErr).Msg("fatal")
		}
	}

	// Graceful shutdown: stop accepting, then drain the model
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DrainTimeout()+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := mgr.Close(); err != nil {
		log.Warn().Err(err).Msg("close model")
	}
	return runErr
}

// runFetch provisions the artifacts without loading them.
func runFetch(ctx context.Context, opts *options, out io.Writer) error {
	cfg, err := resolveConfig(opts, os.Getenv)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	// Same artifact set Start would provision.
	required := newManager(cfg, log).RequiredArtifacts()
	results, err := newProvisioner(cfg, log).EnsureAll(ctx, required...)
	if err != nil {
		return err
	}
	for _, r := range results {
		action := "present"
		if r.Downloaded {
			action = "downloaded"
		}
		fmt.Fprintf(out, "%-7s %-10s %10d bytes  %s\n", r.Name, action, r.Bytes, r.Path)
	}
	return nil
}

// runCheck prints the sanity report and fails when the service could not start.
func runCheck(opts *options, out io.Writer) error {
	cfg, err := resolveConfig(opts, os.Getenv)
	if err != nil {
		return err
	}
	report := newManager(cfg, zerolog.Nop()).SanityCheck()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !report.OK() {
		return errors.New("sanity check failed")
	}
	return nil
}
