// internal/api/availability/handlers.go
package availability

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtdesk/courtdesk/internal/api/apiutil"
	avail "github.com/courtdesk/courtdesk/internal/availability"
)

const availabilityQueryTimeout = 5 * time.Second

var (
	builder     *avail.Builder
	builderOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(b *avail.Builder) {
	if b == nil {
		return
	}
	builderOnce.Do(func() {
		builder = b
	})
}

// GET /api/v1/availability?club_id={id}&start={YYYY-MM-DD}&mode={rolling|calendar}
func HandleWeeklyAvailability(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if builder == nil {
		logger.Error().Msg("Availability builder not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	clubID, err := apiutil.ClubIDFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := strings.TrimSpace(r.URL.Query().Get("start"))
	mode := strings.TrimSpace(r.URL.Query().Get("mode"))

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	week, err := builder.BuildWeek(ctx, clubID, start, mode)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			http.Error(w, "Club not found", http.StatusNotFound)
		case isBadInput(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			logger.Error().Err(err).Int64("club_id", clubID).Msg("Failed to build weekly availability")
			http.Error(w, "Failed to compute availability", http.StatusInternalServerError)
		}
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, week); err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Msg("Failed to write availability response")
	}
}

// isBadInput reports whether the error came from caller-supplied date or
// mode values rather than from computation.
func isBadInput(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid date") ||
		strings.Contains(msg, "invalid mode") ||
		strings.Contains(msg, "invalid timezone")
}
