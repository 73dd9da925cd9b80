// internal/api/clubhours/handlers.go
package clubhours

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtdesk/courtdesk/internal/api/apiutil"
	"github.com/courtdesk/courtdesk/internal/db"
	"github.com/courtdesk/courtdesk/internal/timeutil"
)

const (
	clubHoursQueryTimeout = 5 * time.Second
	dayOfWeekParam        = "day_of_week"
	dateParam             = "date"
)

var (
	queries     *db.Queries
	queriesOnce sync.Once
)

type hoursRequest struct {
	ClubID   *int64 `json:"clubId"`
	OpensAt  string `json:"opensAt"`
	ClosesAt string `json:"closesAt"`
	IsClosed bool   `json:"isClosed"`
}

type dayHoursResponse struct {
	DayOfWeek int64  `json:"dayOfWeek"`
	OpensAt   string `json:"opensAt,omitempty"`
	ClosesAt  string `json:"closesAt,omitempty"`
	IsClosed  bool   `json:"isClosed"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *db.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

// GET /api/v1/clubs/hours?club_id={id}
// Returns all seven days; days without a row report closed.
func HandleHoursList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	clubID, err := apiutil.ClubIDFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubHoursQueryTimeout)
	defer cancel()

	hours, err := q.ListBusinessHours(ctx, clubID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Msg("Failed to fetch business hours")
		http.Error(w, "Failed to load business hours", http.StatusInternalServerError)
		return
	}

	byDay := make(map[int64]db.BusinessHours, len(hours))
	for _, h := range hours {
		byDay[h.DayOfWeek] = h
	}

	days := make([]dayHoursResponse, 0, 7)
	for day := int64(0); day < 7; day++ {
		h, ok := byDay[day]
		entry := dayHoursResponse{DayOfWeek: day, IsClosed: !ok || h.IsClosed}
		if ok && !h.IsClosed {
			entry.OpensAt = h.OpensAt
			entry.ClosesAt = h.ClosesAt
		}
		days = append(days, entry)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, days); err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Msg("Failed to write business hours response")
	}
}

// PUT /api/v1/clubs/hours/{day_of_week}
func HandleHoursUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	dayOfWeek, err := dayOfWeekFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req hoursRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	clubID, err := apiutil.ClubIDFromRequest(r, req.ClubID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubHoursQueryTimeout)
	defer cancel()

	record := db.BusinessHours{
		ClubID:    clubID,
		DayOfWeek: dayOfWeek,
		IsClosed:  req.IsClosed,
	}
	if !req.IsClosed {
		record.OpensAt, record.ClosesAt, err = parseOpenClose(req.OpensAt, req.ClosesAt)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := q.UpsertBusinessHours(ctx, record); err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Int64("day_of_week", dayOfWeek).Msg("Failed to upsert business hours")
		http.Error(w, "Failed to update business hours", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, record); err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Int64("day_of_week", dayOfWeek).Msg("Failed to write business hours response")
	}
}

// PUT /api/v1/clubs/special-hours/{date}
// A special-hours row overrides the weekly pattern for its date entirely,
// including an explicit closed marker.
func HandleSpecialHoursUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date := strings.TrimSpace(r.PathValue(dateParam))
	if _, err := timeutil.ParseDate(date); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req hoursRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	clubID, err := apiutil.ClubIDFromRequest(r, req.ClubID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubHoursQueryTimeout)
	defer cancel()

	record := db.SpecialHours{
		ClubID:   clubID,
		Date:     date,
		IsClosed: req.IsClosed,
	}
	if !req.IsClosed {
		record.OpensAt, record.ClosesAt, err = parseOpenClose(req.OpensAt, req.ClosesAt)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := q.UpsertSpecialHours(ctx, record); err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Str("date", date).Msg("Failed to upsert special hours")
		http.Error(w, "Failed to update special hours", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, record); err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Str("date", date).Msg("Failed to write special hours response")
	}
}

// DELETE /api/v1/clubs/special-hours/{date}
// Removing the override lets the weekly pattern apply again.
func HandleSpecialHoursDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date := strings.TrimSpace(r.PathValue(dateParam))
	if _, err := timeutil.ParseDate(date); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	clubID, err := apiutil.ClubIDFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubHoursQueryTimeout)
	defer cancel()

	if err := q.DeleteSpecialHours(ctx, clubID, date); err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Str("date", date).Msg("Failed to delete special hours")
		http.Error(w, "Failed to delete special hours", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"deleted": true}); err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Str("date", date).Msg("Failed to write special hours response")
	}
}

func parseOpenClose(opensAtRaw, closesAtRaw string) (string, string, error) {
	opensAt, opensTime, err := parseClockField(opensAtRaw, "opens_at")
	if err != nil {
		return "", "", err
	}
	closesAt, closesTime, err := parseClockField(closesAtRaw, "closes_at")
	if err != nil {
		return "", "", err
	}
	if !opensTime.Before(closesTime) {
		return "", "", fmt.Errorf("opens_at must be before closes_at")
	}
	return opensAt, closesAt, nil
}

func parseClockField(raw string, field string) (string, time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", time.Time{}, fmt.Errorf("%s is required", field)
	}
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		parsed, err = time.Parse("3:04 PM", strings.ToUpper(raw))
		if err != nil {
			return "", time.Time{}, fmt.Errorf("%s must be in HH:MM or H:MM AM/PM format", field)
		}
	}
	return parsed.Format("15:04"), parsed, nil
}

func dayOfWeekFromRequest(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(dayOfWeekParam))
	if raw == "" {
		return 0, fmt.Errorf("invalid day_of_week")
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 || value > 6 {
		return 0, fmt.Errorf("day_of_week must be between 0 and 6")
	}
	return value, nil
}

func loadQueries() *db.Queries {
	return queries
}
