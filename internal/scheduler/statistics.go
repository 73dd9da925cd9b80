package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/courtdesk/courtdesk/internal/metrics"
	"github.com/courtdesk/courtdesk/internal/stats"
	"github.com/courtdesk/courtdesk/internal/timeutil"
)

const statisticsJobTimeout = 10 * time.Minute

// RegisterStatisticsJob registers the nightly occupancy rollup. Each run
// recomputes the previous UTC day for every club; one club failing is logged
// and does not stop the rest.
func RegisterStatisticsJob(service *stats.Service, cronExpr string) error {
	if service == nil {
		return fmt.Errorf("statistics job requires service")
	}

	jobName := "daily_occupancy_statistics"
	jobLogger := log.With().
		Str("component", "statistics_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), statisticsJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		date := time.Now().UTC().AddDate(0, 0, -1).Format(timeutil.DateLayout)
		runBulk(ctx, service, date, false, &jobLogger)
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add statistics job: %w", err)
	}

	jobLogger.Info().Msg("Statistics job registered")
	return nil
}

// RunGapFill recomputes the trailing days days, skipping any (club, date)
// that already holds a record. Meant for startup after downtime.
func RunGapFill(ctx context.Context, service *stats.Service, days int) {
	if service == nil || days <= 0 {
		return
	}
	jobLogger := log.With().Str("component", "statistics_gap_fill").Logger()
	ctx = jobLogger.WithContext(ctx)

	now := time.Now().UTC()
	for i := 1; i <= days; i++ {
		date := now.AddDate(0, 0, -i).Format(timeutil.DateLayout)
		runBulk(ctx, service, date, true, &jobLogger)
	}
}

func runBulk(ctx context.Context, service *stats.Service, date string, fallback bool, logger *zerolog.Logger) {
	results, err := service.CalculateDailyForAllClubs(ctx, date, fallback)
	if err != nil {
		logger.Error().Err(err).Str("date", date).Msg("Bulk statistics computation failed")
		metrics.IncJobRun("error")
		return
	}

	var succeeded, skipped, failed int
	for _, result := range results {
		switch {
		case result.Err != nil:
			failed++
			metrics.IncDailyComputation("error")
			logger.Error().Err(result.Err).
				Int64("club_id", result.ClubID).
				Str("date", date).
				Msg("Club statistics computation failed")
		case result.Skipped:
			skipped++
			metrics.IncDailyComputation("skipped")
		default:
			succeeded++
			metrics.IncDailyComputation("success")
		}
	}

	metrics.IncJobRun("success")
	logger.Info().
		Str("date", date).
		Bool("fallback", fallback).
		Int("succeeded", succeeded).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("Bulk statistics computation finished")
}
