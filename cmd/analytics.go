package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"trading-journal/config"
	"trading-journal/internal/dto"
	"trading-journal/internal/repository"
	"trading-journal/internal/service"
	"trading-journal/pkg/cache"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/postgres"

	"github.com/spf13/cobra"
)

var analyticsFlags struct {
	email string
	start string
	end   string
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print the performance summary of one user as JSON",
	RunE:  runAnalytics,
}

func init() {
	analyticsCmd.Flags().StringVar(&analyticsFlags.email, "email", "", "email of the journal owner")
	analyticsCmd.Flags().StringVar(&analyticsFlags.start, "start", "", "first trade date to include (YYYY-MM-DD)")
	analyticsCmd.Flags().StringVar(&analyticsFlags.end, "end", "", "last trade date to include (YYYY-MM-DD)")
	_ = analyticsCmd.MarkFlagRequired("email")
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	filter := dto.AnalyticsFilter{StartDate: analyticsFlags.start, EndDate: analyticsFlags.end}
	if err := dto.NewValidator().Struct(filter); err != nil {
		return fmt.Errorf("invalid date range: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewRepository(cfg, db.DB, cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval))
	user, err := repo.UserRepo.GetUserByEmail(ctx, analyticsFlags.email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: %s", service.ErrUserNotFound, analyticsFlags.email)
	}

	summary, err := service.NewAnalyticsService(cfg, log, repo.TradeRepo).GetAnalytics(ctx, user.ID, filter)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
