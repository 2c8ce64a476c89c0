package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"uocsclub.net/runchallenge/internal/types"
)

var ErrSheetUnavailable = errors.New("failed to fetch challenge sheet")

type SheetFetcherConfig struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// FetchSnapshot reads the runs and the roster from the sheet API. Either
// request failing fails the whole snapshot so runs and roster always match.
func FetchSnapshot(ctx context.Context, config *SheetFetcherConfig) (types.Snapshot, error) {
	runs := SheetRunsResponse{}
	if err := fetchAction(ctx, config, "getRuns", &runs); err != nil {
		return types.Snapshot{}, err
	}
	if !runs.Success {
		log.Printf("ERROR: sheet getRuns: %s\n", runs.Error)
		return types.Snapshot{}, ErrSheetUnavailable
	}

	users := SheetUsersResponse{}
	if err := fetchAction(ctx, config, "getUsers", &users); err != nil {
		return types.Snapshot{}, err
	}
	if !users.Success {
		log.Printf("ERROR: sheet getUsers: %s\n", users.Error)
		return types.Snapshot{}, ErrSheetUnavailable
	}

	return types.Snapshot{
		Runs:         runs.ToRawRuns(),
		Participants: users.ToRawParticipants(),
		FetchedAt:    time.Now().UTC(),
	}, nil
}

func fetchAction(ctx context.Context, config *SheetFetcherConfig, action string, into any) error {
	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	endpoint, err := url.Parse(config.BaseURL)
	if err != nil || len(config.BaseURL) == 0 {
		log.Printf("WARN: Invalid sheet API url %q\n", config.BaseURL)
		return fmt.Errorf("%w: invalid url", ErrSheetUnavailable)
	}
	query := endpoint.Query()
	query.Set("action", action)
	if len(config.APIKey) > 0 {
		query.Set("key", config.APIKey)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		log.Println("WARN: Failed to create sheet request")
		return ErrSheetUnavailable
	}
	req.Header.Add("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("ERROR: %s\n", err)
		return fmt.Errorf("%w: %s", ErrSheetUnavailable, action)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrSheetUnavailable, action, resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(into); err != nil {
		log.Printf("ERROR: %s\n", err)
		return fmt.Errorf("%w: %s body", ErrSheetUnavailable, action)
	}

	return nil
}
