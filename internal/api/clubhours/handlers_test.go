package clubhours

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/courtdesk/courtdesk/internal/db"
	"github.com/courtdesk/courtdesk/internal/testutil"
)

func setupClubHoursTest(t *testing.T) (*db.DB, int64) {
	t.Helper()

	database := testutil.NewTestDB(t)
	ctx := context.Background()

	orgID, err := database.Queries.CreateOrganization(ctx, "Test Org", "test-org")
	if err != nil {
		t.Fatalf("insert organization: %v", err)
	}

	clubID, err := database.Queries.CreateClub(ctx, db.Club{
		OrganizationID: orgID,
		Name:           "Main Club",
		Slug:           "main-club",
		Timezone:       "UTC",
		Currency:       "EUR",
	})
	if err != nil {
		t.Fatalf("insert club: %v", err)
	}

	queries = nil
	queriesOnce = sync.Once{}
	InitHandlers(database.Queries)

	t.Cleanup(func() {
		queries = nil
		queriesOnce = sync.Once{}
	})

	return database, clubID
}

func TestHandleHoursUpdate_ValidJSON(t *testing.T) {
	database, clubID := setupClubHoursTest(t)

	payload, err := json.Marshal(map[string]any{
		"clubId":   clubID,
		"opensAt":  "07:30",
		"closesAt": "21:00",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodPut,
		"/api/v1/clubs/hours/2",
		strings.NewReader(string(payload)),
	)
	req.SetPathValue(dayOfWeekParam, "2")
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	HandleHoursUpdate(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}

	hours, err := database.Queries.ListBusinessHours(context.Background(), clubID)
	if err != nil {
		t.Fatalf("fetch hours: %v", err)
	}
	if len(hours) != 1 {
		t.Fatalf("expected 1 hour row, got %d", len(hours))
	}
	if hours[0].DayOfWeek != 2 {
		t.Fatalf("day: %d", hours[0].DayOfWeek)
	}
	if hours[0].OpensAt != "07:30" {
		t.Fatalf("opens_at: %s", hours[0].OpensAt)
	}
	if hours[0].ClosesAt != "21:00" {
		t.Fatalf("closes_at: %s", hours[0].ClosesAt)
	}
}

func TestHandleHoursUpdate_TwelveHourClock(t *testing.T) {
	database, clubID := setupClubHoursTest(t)

	payload, err := json.Marshal(map[string]any{
		"clubId":   clubID,
		"opensAt":  "8:00 AM",
		"closesAt": "9:30 pm",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodPut,
		"/api/v1/clubs/hours/5",
		strings.NewReader(string(payload)),
	)
	req.SetPathValue(dayOfWeekParam, "5")
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	HandleHoursUpdate(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}

	hours, err := database.Queries.ListBusinessHours(context.Background(), clubID)
	if err != nil {
		t.Fatalf("fetch hours: %v", err)
	}
	if len(hours) != 1 {
		t.Fatalf("expected 1 hour row, got %d", len(hours))
	}
	if hours[0].OpensAt != "08:00" {
		t.Fatalf("opens_at: %s", hours[0].OpensAt)
	}
	if hours[0].ClosesAt != "21:30" {
		t.Fatalf("closes_at: %s", hours[0].ClosesAt)
	}
}

func TestHandleHoursUpdate_InvalidTimeFormat(t *testing.T) {
	_, clubID := setupClubHoursTest(t)

	payload, err := json.Marshal(map[string]any{
		"clubId":   clubID,
		"opensAt":  "7am",
		"closesAt": "21:00",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodPut,
		"/api/v1/clubs/hours/3",
		strings.NewReader(string(payload)),
	)
	req.SetPathValue(dayOfWeekParam, "3")
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	HandleHoursUpdate(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", recorder.Code)
	}
}

func TestHandleHoursUpdate_InvalidOrder(t *testing.T) {
	_, clubID := setupClubHoursTest(t)

	payload, err := json.Marshal(map[string]any{
		"clubId":   clubID,
		"opensAt":  "22:00",
		"closesAt": "08:00",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodPut,
		"/api/v1/clubs/hours/4",
		strings.NewReader(string(payload)),
	)
	req.SetPathValue(dayOfWeekParam, "4")
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	HandleHoursUpdate(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", recorder.Code)
	}
}

func TestHandleHoursUpdate_InvalidDayOfWeek(t *testing.T) {
	_, clubID := setupClubHoursTest(t)

	payload, err := json.Marshal(map[string]any{
		"clubId":   clubID,
		"opensAt":  "08:00",
		"closesAt": "20:00",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodPut,
		"/api/v1/clubs/hours/7",
		strings.NewReader(string(payload)),
	)
	req.SetPathValue(dayOfWeekParam, "7")
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	HandleHoursUpdate(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", recorder.Code)
	}
}

func TestHandleHoursUpdate_ClosedDayNeedsNoTimes(t *testing.T) {
	database, clubID := setupClubHoursTest(t)

	payload, err := json.Marshal(map[string]any{
		"clubId":   clubID,
		"isClosed": true,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodPut,
		"/api/v1/clubs/hours/0",
		strings.NewReader(string(payload)),
	)
	req.SetPathValue(dayOfWeekParam, "0")
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	HandleHoursUpdate(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}

	hours, err := database.Queries.ListBusinessHours(context.Background(), clubID)
	if err != nil {
		t.Fatalf("fetch hours: %v", err)
	}
	if len(hours) != 1 {
		t.Fatalf("expected 1 hour row, got %d", len(hours))
	}
	if !hours[0].IsClosed {
		t.Fatalf("expected closed row")
	}
}

func TestHandleHoursList_AbsentDaysReportClosed(t *testing.T) {
	database, clubID := setupClubHoursTest(t)

	err := database.Queries.UpsertBusinessHours(context.Background(), db.BusinessHours{
		ClubID:    clubID,
		DayOfWeek: 1,
		OpensAt:   "09:00",
		ClosesAt:  "21:00",
	})
	if err != nil {
		t.Fatalf("seed hours: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodGet,
		fmt.Sprintf("/api/v1/clubs/hours?club_id=%d", clubID),
		nil,
	)
	recorder := httptest.NewRecorder()

	HandleHoursList(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}

	var days []dayHoursResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &days); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[1].IsClosed || days[1].OpensAt != "09:00" {
		t.Fatalf("monday: %+v", days[1])
	}
	for _, d := range []int{0, 2, 3, 4, 5, 6} {
		if !days[d].IsClosed {
			t.Fatalf("day %d should report closed", d)
		}
	}
}

func TestHandleSpecialHoursUpdate_ExplicitClosed(t *testing.T) {
	database, clubID := setupClubHoursTest(t)

	payload, err := json.Marshal(map[string]any{
		"clubId":   clubID,
		"isClosed": true,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodPut,
		"/api/v1/clubs/special-hours/2026-12-25",
		strings.NewReader(string(payload)),
	)
	req.SetPathValue(dateParam, "2026-12-25")
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	HandleSpecialHoursUpdate(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}

	special, err := database.Queries.GetSpecialHours(context.Background(), clubID, "2026-12-25")
	if err != nil {
		t.Fatalf("fetch special hours: %v", err)
	}
	if special == nil || !special.IsClosed {
		t.Fatalf("special hours: %+v", special)
	}
}

func TestHandleSpecialHoursUpdate_InvalidDate(t *testing.T) {
	_, clubID := setupClubHoursTest(t)

	payload, err := json.Marshal(map[string]any{
		"clubId":   clubID,
		"opensAt":  "10:00",
		"closesAt": "16:00",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodPut,
		"/api/v1/clubs/special-hours/25-12-2026",
		strings.NewReader(string(payload)),
	)
	req.SetPathValue(dateParam, "25-12-2026")
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	HandleSpecialHoursUpdate(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", recorder.Code)
	}
}

func TestHandleSpecialHoursDelete(t *testing.T) {
	database, clubID := setupClubHoursTest(t)

	err := database.Queries.UpsertSpecialHours(context.Background(), db.SpecialHours{
		ClubID:  clubID,
		Date:    "2026-12-25",
		OpensAt: "10:00", ClosesAt: "14:00",
	})
	if err != nil {
		t.Fatalf("seed special hours: %v", err)
	}

	req := httptest.NewRequest(
		http.MethodDelete,
		fmt.Sprintf("/api/v1/clubs/special-hours/2026-12-25?club_id=%d", clubID),
		nil,
	)
	req.SetPathValue(dateParam, "2026-12-25")
	recorder := httptest.NewRecorder()

	HandleSpecialHoursDelete(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}

	special, err := database.Queries.GetSpecialHours(context.Background(), clubID, "2026-12-25")
	if err != nil {
		t.Fatalf("fetch special hours: %v", err)
	}
	if special != nil {
		t.Fatalf("expected override removed, got %+v", special)
	}
}
