package http

import (
	"bytes"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mealcycle-backend/internal/data/aggregates"
	"github.com/yungbote/mealcycle-backend/internal/data/repos"
	repotest "github.com/yungbote/mealcycle-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/mealcycle-backend/internal/http/handlers"
	"github.com/yungbote/mealcycle-backend/internal/observability"
	"github.com/yungbote/mealcycle-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := repotest.DB(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	ledger := aggregates.NewMealLedger(aggregates.MealLedgerDeps{
		BaseDeps: aggregates.BaseDeps{DB: db, Log: log},
		Meals:    set.Meals,
		Counters: set.Counters,
		Aliases:  set.Aliases,
	})
	svc := services.NewMealService(services.MealServiceDeps{DB: db, Log: log, Ledger: ledger, Repos: set})

	return NewRouter(RouterConfig{
		Log:           log,
		Metrics:       observability.New("mealcycle_router_test"),
		MealHandler:   httpH.NewMealHandler(log, svc),
		HealthHandler: httpH.NewHealthHandler(nil),
	})
}

func do(t *testing.T, r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *nethttp.Request
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

type mealBody struct {
	Meal struct {
		Date         string `json:"date"`
		Timestamp    int64  `json:"timestamp"`
		StartWeek    bool   `json:"start_week"`
		WeekNumber   int    `json:"week_number"`
		Participants string `json:"participants"`
		Meal         string `json:"meal"`
		MealID       string `json:"meal_id"`
	} `json:"meal"`
}

type weekBody struct {
	WeekNumber int   `json:"week_number"`
	Start      int64 `json:"start"`
	End        int64 `json:"end"`
	Total      int   `json:"total"`
	Meals      []struct {
		Timestamp int64  `json:"timestamp"`
		Meal      string `json:"meal"`
	} `json:"meals"`
}

var pastaLunch = map[string]any{
	"date":         "2023-01-01",
	"start_week":   true,
	"meal_type":    "Lunch",
	"participants": "Both",
	"meal":         "Pasta",
}

func TestMealLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, nethttp.MethodPost, "/api/meals", pastaLunch)
	if rec.Code != nethttp.StatusCreated {
		t.Fatalf("store: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var stored mealBody
	decode(t, rec, &stored)
	if stored.Meal.Timestamp != 1672574400 || stored.Meal.Date != "2023-01-01" {
		t.Fatalf("unexpected key: %+v", stored.Meal)
	}
	if !stored.Meal.StartWeek || stored.Meal.WeekNumber != 1 {
		t.Fatalf("expected first marker to be week 1: %+v", stored.Meal)
	}
	if stored.Meal.MealID == "" {
		t.Fatalf("expected a derived meal id")
	}

	rec = do(t, r, nethttp.MethodPost, "/api/meals", pastaLunch)
	if rec.Code != nethttp.StatusConflict {
		t.Fatalf("duplicate: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var dup errorBody
	decode(t, rec, &dup)
	if dup.Error.Code != "duplicate_meal" {
		t.Fatalf("duplicate code: %+v", dup)
	}

	rec = do(t, r, nethttp.MethodGet, "/api/meals/single?date=2023-01-01&meal_type=Lunch&participants=Both", nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("get: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var got mealBody
	decode(t, rec, &got)
	if got.Meal.Meal != "Pasta" {
		t.Fatalf("get returned %+v", got.Meal)
	}

	rec = do(t, r, nethttp.MethodGet, "/api/meals/week?week-number=1", nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("week: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var week weekBody
	decode(t, rec, &week)
	if week.WeekNumber != 1 || week.Start != 1672574400 || week.End != 1672574400+2592000 || week.Total != 1 {
		t.Fatalf("unexpected week: %+v", week)
	}

	rec = do(t, r, nethttp.MethodGet, "/api/meals/counts", nil)
	var counts struct {
		Counts []struct {
			MealID string `json:"meal_id"`
			Name   string `json:"name"`
			Count  int    `json:"count"`
		} `json:"counts"`
	}
	decode(t, rec, &counts)
	if len(counts.Counts) != 1 || counts.Counts[0].Name != "Pasta" || counts.Counts[0].Count != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	rec = do(t, r, nethttp.MethodGet, "/api/meals/names", nil)
	var names struct {
		List []string `json:"list"`
	}
	decode(t, rec, &names)
	if len(names.List) != 1 || names.List[0] != "Pasta" {
		t.Fatalf("unexpected names: %+v", names)
	}

	rec = do(t, r, nethttp.MethodGet, "/api/meals/occurrences/"+stored.Meal.MealID, nil)
	var occ struct {
		Occurrences struct {
			Total int `json:"total"`
			Both  int `json:"both"`
		} `json:"occurrences"`
	}
	decode(t, rec, &occ)
	if occ.Occurrences.Total != 1 || occ.Occurrences.Both != 1 {
		t.Fatalf("unexpected occurrences: %+v", occ)
	}

	key := map[string]string{"date": "2023-01-01", "meal_type": "Lunch", "participants": "Both"}
	rec = do(t, r, nethttp.MethodDelete, "/api/meals/single", key)
	if rec.Code != nethttp.StatusNoContent {
		t.Fatalf("delete: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, r, nethttp.MethodDelete, "/api/meals/single", key)
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("second delete: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestStoreMealRejectsInvalidInput(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name    string
		body    map[string]any
		wantMsg string
	}{
		{
			name:    "bad meal type",
			body:    map[string]any{"date": "2023-01-01", "meal_type": "Brunch", "participants": "Both"},
			wantMsg: "meal_type must be one of",
		},
		{
			name:    "bad date",
			body:    map[string]any{"date": "01/01/2023", "meal_type": "Lunch", "participants": "Both"},
			wantMsg: "date must be a YYYY-MM-DD date",
		},
		{
			name:    "missing participants",
			body:    map[string]any{"date": "2023-01-01", "meal_type": "Lunch"},
			wantMsg: "participants is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, r, nethttp.MethodPost, "/api/meals", tc.body)
			if rec.Code != nethttp.StatusBadRequest {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
			}
			var body errorBody
			decode(t, rec, &body)
			if body.Error.Code != "validation" || !strings.Contains(body.Error.Message, tc.wantMsg) {
				t.Fatalf("unexpected error body: %+v", body)
			}
		})
	}
}

func TestGetWeekErrors(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, nethttp.MethodGet, "/api/meals/week?week-number=abc", nil)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("non-integer week: status=%d", rec.Code)
	}

	rec = do(t, r, nethttp.MethodGet, "/api/meals/week?week-number=5", nil)
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("unknown week: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var body errorBody
	decode(t, rec, &body)
	if body.Error.Code != "cycle_not_found" {
		t.Fatalf("unexpected code: %+v", body)
	}
}

func TestGetWeekDefaultsToFallbackCycle(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, nethttp.MethodGet, "/api/meals/week", nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var week weekBody
	decode(t, rec, &week)
	if week.WeekNumber != 0 || week.Start != 1672000000 || week.End != 1673209600 || week.Total != 0 {
		t.Fatalf("unexpected fallback: %+v", week)
	}
	if week.Meals == nil {
		t.Fatalf("meals should encode as an empty list")
	}
}

func TestReplacementRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, nethttp.MethodPost, "/api/meals/replacement", map[string]string{"meal_id": "old", "replacement": "new"})
	if rec.Code != nethttp.StatusCreated {
		t.Fatalf("insert: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, r, nethttp.MethodPost, "/api/meals/replacement", map[string]string{"meal_id": "old"})
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("missing replacement: status=%d", rec.Code)
	}

	rec = do(t, r, nethttp.MethodGet, "/api/meals/replacement", nil)
	var body struct {
		Replacements map[string]string `json:"replacements"`
	}
	decode(t, rec, &body)
	if body.Replacements["old"] != "new" || len(body.Replacements) != 1 {
		t.Fatalf("unexpected replacements: %+v", body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, nethttp.MethodGet, "/healthcheck", nil)
	if rec.Code != nethttp.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health: status=%d body=%q", rec.Code, rec.Body.String())
	}

	_ = do(t, r, nethttp.MethodGet, "/api/meals/names", nil)
	rec = do(t, r, nethttp.MethodGet, "/metrics", nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("metrics: status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/api/meals/names"`) {
		t.Fatalf("expected api metrics for the names route")
	}
}
