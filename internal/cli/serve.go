package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mark3labs/routes2swagger/internal/server"
	"github.com/mark3labs/routes2swagger/internal/swagger"
)

const defaultServeAddr = "127.0.0.1:8080"

// ServeConfig captures the options of the serve command.
type ServeConfig struct {
	SourceConfig
	Addr       string
	ConfigPath string
	Verbose    bool

	// ready, when set, receives the bound address once the listener is up.
	ready chan<- string
}

var serveRunner = runServe

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Swagger document of a route file over HTTP",
		Long: "Serve /swagger.json and /swagger.yaml, assembled from the route file on every request, " +
			"plus /healthz and Prometheus metrics on /metrics.",
		Example: strings.TrimSpace(`  routes2swagger serve --input routes.yaml --addr :8080`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveServeConfig(cmd)
			if err != nil {
				return err
			}
			return serveRunner(cmd.Context(), cfg)
		},
	}

	addSourceFlags(cmd.Flags())
	cmd.Flags().String("addr", defaultServeAddr, "Listen address")
	return cmd
}

func resolveServeConfig(cmd *cobra.Command) (*ServeConfig, error) {
	cfg := &ServeConfig{Addr: defaultServeAddr}
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		cfg.ConfigPath = configPath
		// The generate keys are accepted so one config file serves both commands.
		gen := defaultGenerateConfig()
		err := readConfigFile(configPath, func(normalized, key string, value any) (bool, error) {
			if normalized == "addr" {
				addr, err := valueAsString(value)
				if err != nil {
					return true, newUsageError(fmt.Sprintf("config field %q: %v", key, err))
				}
				cfg.Addr = addr
				return true, nil
			}
			return gen.applyConfigValue(normalized, key, value)
		})
		if err != nil {
			return nil, err
		}
		cfg.SourceConfig = gen.SourceConfig
		cfg.Verbose = gen.Verbose
	}

	if err := cfg.SourceConfig.applyFlagOverrides(flags); err != nil {
		return nil, err
	}
	if flags.Changed("addr") {
		if cfg.Addr, err = flags.GetString("addr"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("verbose") {
		if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
			return nil, err
		}
	}

	cfg.normalize()
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		cfg.Addr = defaultServeAddr
	}
	if err := cfg.SourceConfig.validate("serve"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *ServeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log, err := newLogger(cfg.Verbose, zapcore.InfoLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	doc, err := cfg.load(ctx, log)
	if err != nil {
		return err
	}
	// Fail fast instead of answering every request with an error.
	if _, err := swagger.Assemble(ctx, doc, swagger.WithValidation(true)); err != nil {
		return swaggerUsageError(err)
	}

	handler, err := server.New(doc, server.WithLogger(log))
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return newUsageError(fmt.Sprintf("serve: listen on %s: %v", cfg.Addr, err))
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info("serving swagger document",
		zap.String("addr", ln.Addr().String()),
		zap.Int("operations", doc.OperationCount()))
	if cfg.ready != nil {
		cfg.ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}
