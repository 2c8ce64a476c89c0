package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	dotenv "github.com/joho/godotenv"
	"uocsclub.net/runchallenge/internal/engine"
	"uocsclub.net/runchallenge/internal/types"
)

const DefaultTimezone = "Asia/Kolkata"

type Config struct {
	ServerPort          int
	DatabasePath        string
	MigrationsDir       string
	SessionDatabasePath string

	SheetAPIURL  string
	SheetAPIKey  string
	SyncInterval time.Duration

	// StationAliases is canonical station -> accepted spellings, read from
	// STATION_ALIASES_FILE. Challenge.Stations is built from it.
	StationAliases map[string][]string

	Challenge engine.Config
}

// Load reads .env (when present) and the process environment. Bad numbers
// and dates are reported as errors instead of falling back to defaults.
func Load(envFiles ...string) (*Config, error) {
	if err := dotenv.Load(envFiles...); err != nil {
		log.Println("WARN: Failed to load .env")
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	e := env{getenv: getenv}

	cfg := &Config{
		DatabasePath:        e.str("DATABASE_PATH", "./data.sqlite3"),
		MigrationsDir:       e.str("MIGRATIONS_DIR", "./migrations"),
		SessionDatabasePath: e.str("SESSION_DATABASE_PATH", "./fiber_storage.sqlite3"),
		SheetAPIURL:         e.str("SHEET_API_URL", ""),
		SheetAPIKey:         e.str("SHEET_API_KEY", ""),
	}

	cfg.ServerPort = e.integer("SERVER_PORT", 7071)
	cfg.SyncInterval = e.duration("SYNC_INTERVAL", time.Minute/2)

	loc, err := time.LoadLocation(e.str("CHALLENGE_TZ", DefaultTimezone))
	if err != nil {
		e.fail("CHALLENGE_TZ", err)
	}

	thresholds := engine.Thresholds{
		DistanceKm:      e.number("DISTANCE_THRESHOLD_KM", engine.DefaultDistanceThresholdKm),
		ActiveDays:      e.integer("ACTIVE_DAY_THRESHOLD", engine.DefaultActiveDayThreshold),
		TopSlots:        e.integer("STATION_TOP_SLOTS", engine.StationTopSlots),
		AttendanceBonus: e.number("ATTENDANCE_BONUS", engine.FullAttendanceBonus),
	}

	window := types.ChallengeWindow{
		Start: e.day("CHALLENGE_START"),
		End:   e.day("CHALLENGE_END"),
	}

	cfg.StationAliases = map[string][]string{}
	if path := e.str("STATION_ALIASES_FILE", ""); path != "" {
		cfg.StationAliases, err = LoadStationAliases(path)
		if err != nil {
			e.fail("STATION_ALIASES_FILE", err)
		}
	}

	if e.err != nil {
		return nil, e.err
	}

	cfg.Challenge = engine.Config{
		Location:   loc,
		Window:     window,
		Thresholds: thresholds,
		Stations:   engine.NewStationTable(cfg.StationAliases),
	}
	if err := cfg.Challenge.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadStationAliases reads a JSON object of canonical station name -> list
// of accepted spellings.
func LoadStationAliases(path string) (map[string][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	aliases := map[string][]string{}
	if err := json.Unmarshal(raw, &aliases); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return aliases, nil
}

// env collects the first parse failure so Load can report it once.
type env struct {
	getenv func(string) string
	err    error
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("config %s: %w", key, err)
	}
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return i
}

func (e *env) number(key string, def float64) float64 {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return f
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	if d <= 0 {
		e.fail(key, fmt.Errorf("must be positive, got %s", d))
		return def
	}
	return d
}

func (e *env) day(key string) types.Day {
	d, err := types.ParseDay(e.getenv(key))
	if err != nil {
		e.fail(key, err)
		return ""
	}
	return d
}
