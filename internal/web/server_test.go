package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"uocsclub.net/runchallenge/internal/engine"
	"uocsclub.net/runchallenge/internal/export"
	"uocsclub.net/runchallenge/internal/types"
)

type fakeSource struct {
	snapshot types.Snapshot
	err      error
}

func (f *fakeSource) GetSnapshot() (types.Snapshot, error) {
	return f.snapshot, f.err
}

func testSnapshot() types.Snapshot {
	snap := types.Snapshot{
		Participants: []types.RawParticipant{
			{ServiceNumber: "1001", Name: "Asha", Station: "North"},
			{ServiceNumber: "1002", Name: "Bala <b>", Station: "South"},
		},
		FetchedAt: time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC),
	}
	for i := 0; i < 5; i++ {
		day := string(types.Day("2025-01-01").AddDays(i))
		snap.Runs = append(snap.Runs, types.RawRunRecord{Id: "a" + day, Date: day, ServiceNumber: "1001", Distance: "25", Status: "approved"})
	}
	snap.Runs = append(snap.Runs, types.RawRunRecord{Id: "b1", Date: "2025-01-02", ServiceNumber: "1002", Distance: "8", Status: "approved"})
	return snap
}

func testChallenge() engine.Config {
	return engine.Config{
		Location:   time.UTC,
		Window:     types.ChallengeWindow{Start: "2025-01-01", End: "2025-02-09"},
		Thresholds: engine.DefaultThresholds(),
	}
}

func newTestServer(t *testing.T, source SnapshotSource) *Server {
	t.Helper()
	s := InitServer(ServerConfig{
		SessionDatabasePath: filepath.Join(t.TempDir(), "sessions.sqlite3"),
		Challenge:           testChallenge(),
	}, source)
	s.Now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func doRequest(t *testing.T, s *Server, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := s.App.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s failed: %v", req.URL.Path, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestLeaderboardJSON(t *testing.T) {
	s := newTestServer(t, &fakeSource{snapshot: testSnapshot()})

	resp, body := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	payload := struct {
		Today     string `json:"today"`
		FetchedAt string `json:"fetchedAt"`
		Entries   []struct {
			Rank  int                `json:"rank"`
			Entry types.RunnerTotals `json:"entry"`
		} `json:"entries"`
	}{}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if payload.Today != "2025-01-10" || payload.FetchedAt != "2025-01-10T06:00:00Z" {
		t.Fatalf("unexpected header fields %+v", payload)
	}
	if len(payload.Entries) != 2 || payload.Entries[0].Entry.ServiceNumber != "1001" || payload.Entries[0].Rank != 1 {
		t.Fatalf("unexpected entries %+v", payload.Entries)
	}
	if payload.Entries[0].Entry.TotalDistanceKm != 125 {
		t.Fatalf("expected 125 km, got %v", payload.Entries[0].Entry.TotalDistanceKm)
	}
}

func TestJourney(t *testing.T) {
	s := newTestServer(t, &fakeSource{snapshot: testSnapshot()})

	resp, body := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/journey/1001", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	journey := struct {
		ServiceNumber  string                 `json:"serviceNumber"`
		CompletionDate string                 `json:"completionDate"`
		CumulativeLog  []types.CompletionStep `json:"cumulativeLog"`
	}{}
	if err := json.Unmarshal([]byte(body), &journey); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if journey.CompletionDate != "2025-01-04" || len(journey.CumulativeLog) != 4 {
		t.Fatalf("unexpected journey %+v", journey)
	}

	resp, _ = doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/journey/1002", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for a non-finisher, got %d", resp.StatusCode)
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, &fakeSource{snapshot: testSnapshot()})

	resp, body := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/export/stations.csv", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "stations-2025-01-10.csv") {
		t.Fatalf("unexpected disposition %q", resp.Header.Get("Content-Disposition"))
	}
	if !strings.HasPrefix(body, "rank,station,performance_percent") {
		t.Fatalf("unexpected csv:\n%s", body)
	}

	resp, _ = doRequest(t, s, httptest.NewRequest(http.MethodGet, "/export/pace", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown view, got %d", resp.StatusCode)
	}
}

func TestExportBodyMatchesReport(t *testing.T) {
	s := newTestServer(t, &fakeSource{snapshot: testSnapshot()})

	report, err := engine.Compute(testSnapshot(), testChallenge(), "2025-01-10")
	if err != nil {
		t.Fatalf("compute report: %v", err)
	}

	for _, view := range export.Views {
		want := bytes.Buffer{}
		if err := export.Write(&want, view, report); err != nil {
			t.Fatalf("%s: write csv: %v", view, err)
		}

		resp, body := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/export/"+view, nil))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", view, resp.StatusCode)
		}
		if body != want.String() {
			t.Fatalf("%s: served csv differs from the report:\n%s\nwant:\n%s", view, body, want.String())
		}
	}
}

func TestRootRendersEscapedHTML(t *testing.T) {
	s := newTestServer(t, &fakeSource{snapshot: testSnapshot()})

	resp, body := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(strings.ToLower(body), "<!doctype html>") {
		t.Fatalf("full page must include the layout")
	}
	if !strings.Contains(body, "Asha") || !strings.Contains(body, "Bala &lt;b&gt;") {
		t.Fatalf("expected escaped runner names in page:\n%s", body)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	_, partial := doRequest(t, s, req)
	if strings.Contains(strings.ToLower(partial), "<!doctype html>") {
		t.Fatalf("htmx requests must get the body only")
	}
}

func TestMeHighlightsRunner(t *testing.T) {
	s := newTestServer(t, &fakeSource{snapshot: testSnapshot()})

	resp, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/me/1002", nil))
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range resp.Cookies() {
		req.AddCookie(cookie)
	}
	_, body := doRequest(t, s, req)
	if !strings.Contains(body, `<tr class="me"><td class="num">2</td><td>Bala &lt;b&gt;`) {
		t.Fatalf("expected highlighted row for 1002:\n%s", body)
	}
}

func TestEmptySnapshotIsNotAnError(t *testing.T) {
	s := newTestServer(t, &fakeSource{})

	resp, body := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "No runs yet.") || !strings.Contains(body, "No data has been synced yet.") {
		t.Fatalf("expected empty state:\n%s", body)
	}
}

func TestSourceFailureIsServerError(t *testing.T) {
	s := newTestServer(t, &fakeSource{err: errors.New("disk on fire")})

	for _, path := range []string{"/", "/api/stations", "/export/leaderboard"} {
		resp, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", path, resp.StatusCode)
		}
	}
}

func TestAssetsServed(t *testing.T) {
	s := newTestServer(t, &fakeSource{})

	resp, body := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/assets/style.css", nil))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "tr.me") {
		t.Fatalf("expected stylesheet, got %d", resp.StatusCode)
	}
}
