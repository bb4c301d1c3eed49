package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobfit/internal/database"
)

func newHistoryRouter(h *HistoryHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/v1/eligibility/checks", h.ListChecks)
	router.GET("/v1/eligibility/checks/:id", h.GetCheck)
	router.GET("/v1/eligibility/checks/:id/resume-link", h.GetResumeLink)
	return router
}

func seedCheck(t *testing.T, db *gorm.DB, check database.Check) database.Check {
	t.Helper()
	if err := db.Create(&check).Error; err != nil {
		t.Fatalf("seed check: %v", err)
	}
	return check
}

func TestListChecks_OnlyOwnClient(t *testing.T) {
	db := newTestDB(t)
	h := NewHistoryHandler(db, newFakeStorage())

	eligible := true
	score := 90
	seedCheck(t, db, database.Check{
		ClientID:    "192.0.2.1",
		Status:      database.CheckStatusCompleted,
		Eligibility: &eligible,
		MatchScore:  &score,
	})
	seedCheck(t, db, database.Check{
		ClientID: "198.51.100.7",
		Status:   database.CheckStatusCompleted,
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/eligibility/checks", nil)
	newHistoryRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var items []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want only the caller's record", len(items))
	}
	if items[0]["eligibility_label"] != "Eligible" {
		t.Fatalf("label = %v", items[0]["eligibility_label"])
	}
	if items[0]["score_label"] != "90%" {
		t.Fatalf("score = %v", items[0]["score_label"])
	}
}

func TestGetCheck_CompletedDetail(t *testing.T) {
	db := newTestDB(t)
	h := NewHistoryHandler(db, newFakeStorage())

	eligible := false
	check := seedCheck(t, db, database.Check{
		ClientID:        "192.0.2.1",
		JobDescription:  "Go developer",
		Status:          database.CheckStatusCompleted,
		Eligibility:     &eligible,
		MatchedSkills:   datatypes.JSON(`["Go"]`),
		UnmatchedSkills: datatypes.JSON(`["Rust","Zig"]`),
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/eligibility/checks/"+itoa(check.ID), nil)
	newHistoryRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var detail struct {
		JobDescription string `json:"job_description"`
		Result         *struct {
			EligibilityLabel string   `json:"eligibility_label"`
			ScoreLabel       string   `json:"score_label"`
			UnmatchedSkills  []string `json:"unmatched_skills"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.JobDescription != "Go developer" {
		t.Fatalf("job description = %q", detail.JobDescription)
	}
	if detail.Result == nil {
		t.Fatal("completed check must carry a result")
	}
	if detail.Result.EligibilityLabel != "Not Eligible" {
		t.Fatalf("label = %q", detail.Result.EligibilityLabel)
	}
	if detail.Result.ScoreLabel != "-" {
		t.Fatalf("score = %q, want placeholder", detail.Result.ScoreLabel)
	}
	if len(detail.Result.UnmatchedSkills) != 2 {
		t.Fatalf("unmatched = %v", detail.Result.UnmatchedSkills)
	}
}

func TestGetCheck_FailedHasNoResult(t *testing.T) {
	db := newTestDB(t)
	h := NewHistoryHandler(db, newFakeStorage())

	check := seedCheck(t, db, database.Check{
		ClientID:     "192.0.2.1",
		Status:       database.CheckStatusFailed,
		ErrorMessage: "Request failed: 500",
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/eligibility/checks/"+itoa(check.ID), nil)
	newHistoryRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var detail struct {
		Error  string          `json:"error"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Error != "Request failed: 500" {
		t.Fatalf("error = %q", detail.Error)
	}
	if len(detail.Result) != 0 {
		t.Fatalf("failed check must not carry a result: %s", detail.Result)
	}
}

func TestGetCheck_LookupErrors(t *testing.T) {
	db := newTestDB(t)
	h := NewHistoryHandler(db, newFakeStorage())

	seedCheck(t, db, database.Check{ClientID: "198.51.100.7", Status: database.CheckStatusCompleted})

	cases := []struct {
		name string
		path string
		want int
	}{
		{"invalid id", "/v1/eligibility/checks/abc", http.StatusBadRequest},
		{"missing id", "/v1/eligibility/checks/9999", http.StatusNotFound},
		{"other client's record", "/v1/eligibility/checks/1", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			newHistoryRouter(h).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestGetResumeLink(t *testing.T) {
	db := newTestDB(t)
	storageFake := newFakeStorage()
	storageFake.presign["checks/abc/resume.pdf"] = "https://minio.example.invalid/signed"
	h := NewHistoryHandler(db, storageFake)

	withKey := seedCheck(t, db, database.Check{
		ClientID:        "192.0.2.1",
		Status:          database.CheckStatusCompleted,
		ResumeObjectKey: "checks/abc/resume.pdf",
	})
	withoutKey := seedCheck(t, db, database.Check{
		ClientID: "192.0.2.1",
		Status:   database.CheckStatusFailed,
	})

	router := newHistoryRouter(h)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/eligibility/checks/"+itoa(withKey.ID)+"/resume-link", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.URL != "https://minio.example.invalid/signed" {
		t.Fatalf("url = %q", payload.URL)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/eligibility/checks/"+itoa(withoutKey.ID)+"/resume-link", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 when no resume stored", rec.Code)
	}
}

func itoa(n uint) string {
	return strconv.Itoa(int(n))
}
