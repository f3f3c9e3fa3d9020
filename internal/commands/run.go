package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finwatch-dev/finwatch/internal/auditlog"
	"github.com/finwatch-dev/finwatch/internal/config"
	"github.com/finwatch-dev/finwatch/internal/metrics"
	"github.com/finwatch-dev/finwatch/internal/notify"
	"github.com/finwatch-dev/finwatch/internal/slackbot"
)

func newRunCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the notifier daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotifier(cmd.Context(), cfgPath)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "finwatch.yaml", "config file")
	return cmd
}

func runNotifier(ctx context.Context, cfgPath string) error {
	app, err := openApp(cfgPath)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	botToken, err := config.ReadSecret(app.cfg.Slack.BotTokenFile)
	if err != nil {
		return err
	}
	appToken, err := config.ReadSecret(app.cfg.Slack.AppTokenFile)
	if err != nil {
		return err
	}
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	sink := slackbot.NewSink(api, app.log.Named("slack"))
	commander := slackbot.NewCommander(api, app.builder, app.cfg.Notify.FallbackLimit, app.log.Named("commands"))

	m := metrics.New("finwatch")
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		return err
	}
	if addr := app.cfg.Admin.Addr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: metrics.Handler(reg)}
		go func() {
			app.log.Info("admin listener started", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.log.Error("admin listener failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	var audit *auditlog.Log
	if path := app.cfg.Store.AuditLogPath; path != "" {
		audit = auditlog.New(path)
	}

	// Prime the account cache so the first cycle's transaction blocks
	// can resolve their accounts.
	if err := app.engine.SyncAccounts(ctx); err != nil {
		return err
	}

	go func() {
		if err := commander.Run(ctx); err != nil && ctx.Err() == nil {
			app.log.Error("socket mode stopped", zap.Error(err))
		}
	}()

	loop := notify.NewLoop(notify.Config{
		Interval:      app.cfg.Notify.Interval(),
		ChunkSize:     app.cfg.Notify.ChunkSize,
		FallbackLimit: app.cfg.Notify.FallbackLimit,
	}, app.builder, sink, app.aggregator, audit, m, app.log.Named("notify"))

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		app.log.Error("notifier loop failed", zap.Error(err))
		return err
	}
	return nil
}
