package eligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestClientCheck_SendsExpectedRequest(t *testing.T) {
	var calls atomic.Int64
	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"eligibility":"eligible","match_score":0.9}`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/")
	body, err := client.Check(context.Background(), "Go developer", "UERGLWJvZHk=")
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	if calls.Load() != 1 {
		t.Fatalf("upstream called %d times, want exactly 1", calls.Load())
	}
	if gotPath != CheckPath {
		t.Fatalf("path = %q, want %q", gotPath, CheckPath)
	}
	if gotBody["job_description"] != "Go developer" {
		t.Fatalf("job_description = %q", gotBody["job_description"])
	}
	if gotBody["resume"] != "UERGLWJvZHk=" {
		t.Fatalf("resume = %q", gotBody["resume"])
	}
	if res := Normalize(body); res.Verdict != VerdictEligible {
		t.Fatalf("body not passed through: %s", body)
	}
}

func TestClientCheck_StripsDataURIPrefix(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Check(context.Background(), "jd", "data:application/pdf;base64,UERGLWJvZHk="); err != nil {
		t.Fatalf("check: %v", err)
	}
	if gotBody["resume"] != "UERGLWJvZHk=" {
		t.Fatalf("resume = %q, want the prefix stripped", gotBody["resume"])
	}
}

func TestClientCheck_NonSuccessStatus(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Check(context.Background(), "jd", "cv"); err == nil {
		t.Fatal("expected error for 500 response")
	} else if err.Error() != "Request failed: 500" {
		t.Fatalf("error = %q, want %q", err.Error(), "Request failed: 500")
	}

	if calls.Load() != 1 {
		t.Fatalf("upstream called %d times, want exactly 1 (no retries)", calls.Load())
	}
}

func TestClientCheck_RejectsOutsideTwoHundredRange(t *testing.T) {
	for _, status := range []int{300, 301, 404, 500} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{}`))
		}))

		client := NewClient(server.URL)
		_, err := client.Check(context.Background(), "jd", "cv")
		server.Close()

		if err == nil {
			t.Fatalf("status %d treated as success", status)
		}
		if want := fmt.Sprintf("Request failed: %d", status); err.Error() != want {
			t.Fatalf("error = %q, want %q", err.Error(), want)
		}
	}
}

func TestClientCheck_TransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	if _, err := client.Check(context.Background(), "jd", "cv"); err == nil {
		t.Fatal("expected transport error")
	}
}
