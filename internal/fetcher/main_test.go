package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sheetServer(t *testing.T, runs, users string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch r.URL.Query().Get("action") {
		case "getRuns":
			w.Write([]byte(runs))
		case "getUsers":
			w.Write([]byte(users))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSnapshot(t *testing.T) {
	srv := sheetServer(t,
		`{"success":true,"data":[
			{"id":17,"date":"2025-01-05","serviceNumber":1001,"name":"Asha","station":"North","distance":"5.5","status":"approved"},
			{"id":"r-18","date":"2025-01-06","serviceNumber":" 1002 ","name":"Bala","station":"South","distance":7.25}
		]}`,
		`{"success":true,"data":[{"serviceNumber":1001,"name":"Asha","station":"North"}]}`,
		http.StatusOK,
	)

	snap, err := FetchSnapshot(context.Background(), &SheetFetcherConfig{BaseURL: srv.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap.Runs) != 2 || len(snap.Participants) != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	first := snap.Runs[0]
	if first.Id != "17" || first.ServiceNumber != "1001" || first.Distance != "5.5" || first.Status != "approved" {
		t.Fatalf("unexpected first run %+v", first)
	}
	if snap.Runs[1].ServiceNumber != "1002" {
		t.Fatalf("service number must be trimmed, got %q", snap.Runs[1].ServiceNumber)
	}
	if n, ok := snap.Runs[1].Distance.(json.Number); !ok || n.String() != "7.25" {
		t.Fatalf("numeric distance must stay a json.Number, got %#v", snap.Runs[1].Distance)
	}
	if snap.Participants[0].ServiceNumber != "1001" {
		t.Fatalf("unexpected participant %+v", snap.Participants[0])
	}
	if snap.FetchedAt.IsZero() {
		t.Fatalf("expected fetch time")
	}
}

func TestFetchSnapshotUnsuccessfulSheet(t *testing.T) {
	srv := sheetServer(t, `{"success":false,"error":"quota"}`, `{"success":true,"data":[]}`, http.StatusOK)

	_, err := FetchSnapshot(context.Background(), &SheetFetcherConfig{BaseURL: srv.URL, APIKey: "secret"})
	if !errors.Is(err, ErrSheetUnavailable) {
		t.Fatalf("expected ErrSheetUnavailable, got %v", err)
	}
}

func TestFetchSnapshotHTTPError(t *testing.T) {
	srv := sheetServer(t, `{}`, `{}`, http.StatusInternalServerError)

	_, err := FetchSnapshot(context.Background(), &SheetFetcherConfig{BaseURL: srv.URL, APIKey: "secret"})
	if !errors.Is(err, ErrSheetUnavailable) {
		t.Fatalf("expected ErrSheetUnavailable, got %v", err)
	}
}

func TestFetchSnapshotBadURL(t *testing.T) {
	_, err := FetchSnapshot(context.Background(), &SheetFetcherConfig{})
	if !errors.Is(err, ErrSheetUnavailable) {
		t.Fatalf("expected ErrSheetUnavailable, got %v", err)
	}
}
