// internal/api/statistics/handlers.go
package statistics

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/courtdesk/courtdesk/internal/api/apiutil"
	"github.com/courtdesk/courtdesk/internal/db"
	"github.com/courtdesk/courtdesk/internal/stats"
)

const statisticsQueryTimeout = 10 * time.Second

var (
	service *stats.Service
	queries *db.Queries
	once    sync.Once
)

type recomputeRequest struct {
	ClubID *int64 `json:"clubId"`
	Date   string `json:"date,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

type dailyResponse struct {
	Date                string  `json:"date"`
	BookedSlots         float64 `json:"bookedSlots"`
	TotalSlots          float64 `json:"totalSlots"`
	OccupancyPercentage float64 `json:"occupancyPercentage"`
}

type monthlyResponse struct {
	Month                  int64    `json:"month"`
	Year                   int64    `json:"year"`
	AverageOccupancy       float64  `json:"averageOccupancy"`
	PreviousMonthOccupancy *float64 `json:"previousMonthOccupancy"`
	OccupancyChangePercent *float64 `json:"occupancyChangePercent"`
}

type dateResultResponse struct {
	Date    string `json:"date"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *stats.Service, q *db.Queries) {
	if s == nil || q == nil {
		return
	}
	once.Do(func() {
		service = s
		queries = q
	})
}

// GET /api/v1/statistics/daily?club_id={id}&date={YYYY-MM-DD}
// Computes on demand when no record exists yet.
func HandleDailyStatistics(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil || queries == nil {
		logger.Error().Msg("Statistics service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	clubID, err := apiutil.ClubIDFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), statisticsQueryTimeout)
	defer cancel()

	record, err := queries.GetDailyStatistics(ctx, clubID, date)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Str("date", date).Msg("Failed to load daily statistics")
		http.Error(w, "Failed to load statistics", http.StatusInternalServerError)
		return
	}
	if record == nil {
		record, err = service.CalculateAndStoreDaily(ctx, clubID, date)
		if err != nil {
			writeComputeError(w, logger, err, clubID, date)
			return
		}
	}

	writeJSON(w, logger, dailyResponse{
		Date:                record.Date,
		BookedSlots:         record.BookedSlots,
		TotalSlots:          record.TotalSlots,
		OccupancyPercentage: record.OccupancyPercentage,
	})
}

// GET /api/v1/statistics/monthly?club_id={id}&month={1-12}&year={YYYY}
func HandleMonthlyStatistics(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Statistics service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	clubID, err := apiutil.ClubIDFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	month, err := apiutil.ParsePositiveInt64Field(r.URL.Query().Get("month"), "month")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	year, err := apiutil.ParsePositiveInt64Field(r.URL.Query().Get("year"), "year")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), statisticsQueryTimeout)
	defer cancel()

	record, err := service.GetOrCalculateMonthly(ctx, clubID, month, year)
	if err != nil {
		if strings.Contains(err.Error(), "invalid month") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error().Err(err).Int64("club_id", clubID).Msg("Failed to compute monthly statistics")
		http.Error(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "No statistics for this month", http.StatusNotFound)
		return
	}

	resp := monthlyResponse{
		Month:            record.Month,
		Year:             record.Year,
		AverageOccupancy: record.AverageOccupancy,
	}
	if record.PreviousMonthOccupancy.Valid {
		resp.PreviousMonthOccupancy = &record.PreviousMonthOccupancy.Float64
	}
	if record.OccupancyChangePercent.Valid {
		resp.OccupancyChangePercent = &record.OccupancyChangePercent.Float64
	}
	writeJSON(w, logger, resp)
}

// POST /api/v1/statistics/recompute
// Body either {clubId, date} for one day or {clubId, start, end} (RFC 3339
// instants) for every date a booking interval touches.
func HandleRecompute(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Statistics service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req recomputeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	clubID, err := apiutil.ClubIDFromRequest(r, req.ClubID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), statisticsQueryTimeout)
	defer cancel()

	if req.Date != "" {
		if _, err := service.CalculateAndStoreDaily(ctx, clubID, req.Date); err != nil {
			writeComputeError(w, logger, err, clubID, req.Date)
			return
		}
		writeJSON(w, logger, []dateResultResponse{{Date: req.Date, Success: true}})
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		http.Error(w, "start must be an RFC 3339 timestamp", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		http.Error(w, "end must be an RFC 3339 timestamp", http.StatusBadRequest)
		return
	}

	results, err := service.UpdateForBooking(ctx, clubID, start, end)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Club not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := make([]dateResultResponse, 0, len(results))
	for _, result := range results {
		item := dateResultResponse{Date: result.Date, Success: result.Err == nil}
		if result.Err != nil {
			item.Error = result.Err.Error()
		}
		resp = append(resp, item)
	}
	writeJSON(w, logger, resp)
}

func writeComputeError(w http.ResponseWriter, logger *zerolog.Logger, err error, clubID int64, date string) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		http.Error(w, "Club not found", http.StatusNotFound)
	case strings.Contains(err.Error(), "invalid date"):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error().Err(err).Int64("club_id", clubID).Str("date", date).Msg("Failed to compute daily statistics")
		http.Error(w, "Failed to compute statistics", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, payload any) {
	if err := apiutil.WriteJSON(w, http.StatusOK, payload); err != nil {
		logger.Error().Err(err).Msg("Failed to write statistics response")
	}
}
