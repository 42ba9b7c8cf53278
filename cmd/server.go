package cmd

import (
	"context"
	"errors"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"trading-journal/internal/delivery/http"
	"trading-journal/internal/delivery/telegram"
	"trading-journal/internal/repository"
	"trading-journal/internal/service"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/utils"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the trading journal API",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.cache)
	services := service.NewService(
		appDep.cfg,
		appDep.log,
		repo,
		appDep.cache,
		appDep.store,
		appDep.notifier,
	)

	apiServer := NewHTTPServer(ctx, appDep)
	apiServer.Use()

	http.NewHttpAPIHandler(appDep.cfg, appDep.log, appDep.echo, appDep.validator, services, appDep.db).SetupRoutes()

	var telegramHandler *telegram.TelegramBotHandler
	if appDep.telegramBot != nil {
		telegramHandler = telegram.NewTelegramBotHandler(
			ctx,
			appDep.cfg,
			appDep.log,
			appDep.telegramBot,
			appDep.telegram,
			appDep.echo,
			services,
		)
		appDep.telegram.StartCleanupExpired(ctx)
		telegramHandler.Start()
	}

	scheduler := newJobTicker(ctx, appDep, services.SchedulerService)
	if scheduler != nil {
		scheduler.Start()
	}

	utils.GoSafe(appDep.log, func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			appDep.log.Fatal("Failed to start HTTP server", logger.ErrorField(err))
		}
	})

	<-ctx.Done()
	appDep.log.Info("Shutting down gracefully...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
		appDep.log.Info("Job ticker stopped")
	}
	if telegramHandler != nil {
		telegramHandler.Stop()
	}
	if err := apiServer.Stop(); err != nil {
		appDep.log.Error("Failed to stop HTTP server", logger.ErrorField(err))
	}
	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}

// newJobTicker polls the job table on the configured spec. Jobs carry their
// own cron expressions; the ticker only decides how often they are checked.
func newJobTicker(ctx context.Context, appDep *AppDependency, scheduler service.SchedulerService) *cron.Cron {
	if !appDep.cfg.Scheduler.Enabled {
		appDep.log.Info("Job scheduler is disabled")
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(appDep.cfg.Scheduler.CronSpec, func() {
		if err := scheduler.Execute(ctx); err != nil {
			appDep.log.ErrorContextWithAlert(ctx, "Scheduled job run failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		appDep.log.Fatal("Invalid scheduler cron spec", logger.ErrorField(err), logger.StringField("cron_spec", appDep.cfg.Scheduler.CronSpec))
	}
	appDep.log.Info("Job scheduler enabled", logger.StringField("cron_spec", appDep.cfg.Scheduler.CronSpec))
	return c
}
