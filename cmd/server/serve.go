package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"factoryplan/internal/adapters/backend"
	emailPkg "factoryplan/internal/adapters/email"
	web "factoryplan/internal/adapters/http"
	"factoryplan/internal/adapters/http/middleware"
	"factoryplan/internal/adapters/http/perf"
	"factoryplan/internal/application/orchestrators"
	"factoryplan/internal/config"
)

func serveCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard against the content backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			middleware.SecureCookies = cfg.IsProduction()

			// Performance instrumentation shared by the request timing and the backend client
			collector := perf.NewCollector(perf.DefaultRingSize)
			client := backend.New(cfg.Dashboard.BackendURL,
				backend.WithTimeout(cfg.BackendTimeout()),
				backend.WithCollector(collector),
				backend.WithSlowThreshold(cfg.SlowBackendCall()),
			)

			notify := orchestrators.NotifyContentChangeDeps{
				EmailSender: emailPkg.NewSender(cfg.Notify.ResendKey, cfg.Notify.From),
				FromAddress: cfg.Notify.From,
				ReplyTo:     cfg.Notify.ReplyTo,
				Recipients:  cfg.Notify.Recipients,
				Now:         time.Now,
			}
			logEmailSetup(cfg)

			h, err := web.NewMux(web.Options{
				Backend:    client,
				Collector:  collector,
				CSRFKey:    cfg.Dashboard.CSRFKey,
				Production: cfg.IsProduction(),
				Notify:     notify,
			})
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()
			return listen(ctx, "dashboard", cfg.Dashboard.Addr, h)
		},
	}
}

func logEmailSetup(cfg *config.Config) {
	switch {
	case len(cfg.Notify.Recipients) == 0:
		slog.Info("email_setup", "mode", "disabled", "detail", "no notify recipients configured")
	case cfg.Notify.ResendKey != "":
		slog.Info("email_setup", "mode", "resend", "recipients", len(cfg.Notify.Recipients))
	case cfg.IsProduction():
		slog.Warn("email_setup", "mode", "noop", "detail", "FACTORYPLAN_RESEND_KEY is not set, change emails are not delivered")
	default:
		slog.Info("email_setup", "mode", "noop", "detail", "set FACTORYPLAN_RESEND_KEY for real delivery")
	}
}
