package cli

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/turtacn/meisai-checker/internal/config"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/meisai-checker/internal/interfaces/http"
	"github.com/turtacn/meisai-checker/internal/interfaces/http/handlers"
	"github.com/turtacn/meisai-checker/internal/interfaces/http/middleware"
)

func newServeCmd() *cobra.Command {
	var (
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg, logger := cliCtx.Config, cliCtx.Logger
			if port > 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := BuildRuntime(ctx, cfg, logger, RuntimeOptions{WithSinks: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			if watch && cliCtx.ConfigPath != "" {
				if err := watchConfig(cliCtx.ConfigPath, rt); err != nil {
					return err
				}
			}

			server := httpapi.NewServer(httpapi.ServerConfig{
				Host:            cfg.Server.Host,
				Port:            cfg.Server.Port,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, newRouter(rt), logger)

			logger.Info("starting meisai API server",
				logging.String("version", Version),
				logging.String("addr", server.Addr()),
				logging.Bool("llm_enabled", cfg.LLMEnabled()))
			return server.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	cmd.Flags().BoolVar(&watch, "watch-config", true, "reload llm, guidelines and output settings when the config file changes")
	return cmd
}

func newRouter(rt *Runtime) *gin.Engine {
	cfg := rt.Config
	return httpapi.NewRouter(httpapi.RouterConfig{
		Mode: cfg.Server.Mode,
		ReviewHandler: handlers.NewReviewHandler(rt.Service, handlers.ReviewHandlerConfig{
			UploadDir:      cfg.Server.UploadDir,
			OutDir:         cfg.Output.Dir,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
		}, rt.Logger),
		HealthHandler:    handlers.NewHealthHandler(Version, rt.Checkers...),
		Logging:          middleware.DefaultLoggingConfig(),
		Logger:           rt.Logger,
		Metrics:          rt.Metrics,
		MetricsCollector: rt.Collector,
	})
}

// watchConfig reloads rt whenever the config file changes.  A change that
// fails to load keeps the running service.
func watchConfig(path string, rt *Runtime) error {
	return config.Watch(path, func(cfg *config.Config) {
		if err := rt.Reload(cfg); err != nil {
			rt.Metrics.ConfigReloadsTotal.WithLabelValues("failure").Inc()
			rt.Logger.Error("config reload failed", logging.Err(err))
			return
		}
		rt.Metrics.ConfigReloadsTotal.WithLabelValues("success").Inc()
		rt.Logger.Info("config reloaded",
			logging.String("path", path),
			logging.String("model", cfg.LLM.Model),
			logging.String("guidelines_dir", cfg.Guidelines.Dir))
	}, func(err error) {
		rt.Metrics.ConfigReloadsTotal.WithLabelValues("failure").Inc()
		rt.Logger.Warn("ignoring invalid config change", logging.Err(err))
	})
}

//Personal.AI order the ending
