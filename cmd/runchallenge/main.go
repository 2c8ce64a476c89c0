package main

import (
	"context"
	"log"
	"strings"
	"time"

	"uocsclub.net/runchallenge/internal/config"
	"uocsclub.net/runchallenge/internal/engine"
	"uocsclub.net/runchallenge/internal/fetcher"
	"uocsclub.net/runchallenge/internal/types"
	"uocsclub.net/runchallenge/internal/web"

	"github.com/go-co-op/gocron/v2"
	"uocsclub.net/runchallenge/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalln("Failed to start scheduler")
	}

	db, err := database.InitDatabase(cfg.DatabasePath, cfg.MigrationsDir)
	if err != nil {
		log.Println(err)
		return
	}
	defer db.Close()

	stations, err := loadStations(db, cfg.StationAliases)
	if err != nil {
		log.Println(err)
		return
	}
	cfg.Challenge.Stations = stations

	fetcherConfig := fetcher.SheetFetcherConfig{
		BaseURL: cfg.SheetAPIURL,
		APIKey:  cfg.SheetAPIKey,
	}

	j, err := s.NewJob(
		gocron.DurationJob(cfg.SyncInterval),
		gocron.NewTask(func(db *database.DatabaseInst) {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.SyncInterval)
			defer cancel()

			snapshot, err := fetcher.FetchSnapshot(ctx, &fetcherConfig)
			if err != nil {
				// keep serving the previous snapshot
				log.Println(err)
				return
			}

			err = db.StoreSnapshot(snapshot)
			if err != nil {
				log.Println(err)
				return
			}

			logDiagnostics(snapshot, cfg.Challenge)
		},
			db,
		),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Fatalln(err)
	}

	s.Start()
	defer s.Shutdown()
	j.RunNow() // durationjob doesn't run on startup

	server := web.InitServer(web.ServerConfig{
		Port:                cfg.ServerPort,
		SessionDatabasePath: cfg.SessionDatabasePath,
		Challenge:           cfg.Challenge,
	}, db)

	log.Println("Started!")

	if err := server.Listen(); err != nil {
		log.Println(err)
	}
}

// loadStations stores the configured aliases and rebuilds the station table
// from everything the database knows, so aliases added earlier survive a
// config change.
func loadStations(db *database.DatabaseInst, configured map[string][]string) (engine.StationTable, error) {
	for station, aliases := range configured {
		if err := db.StoreStationAlias(station, station); err != nil {
			return engine.StationTable{}, err
		}
		for _, alias := range aliases {
			if err := db.StoreStationAlias(alias, station); err != nil {
				return engine.StationTable{}, err
			}
		}
	}

	aliases, err := db.GetStationAliases()
	if err != nil {
		return engine.StationTable{}, err
	}
	return engine.NewStationTable(aliases), nil
}

func logDiagnostics(snapshot types.Snapshot, challenge engine.Config) {
	today := types.DayOf(time.Now(), challenge.Location)
	report, err := engine.Compute(snapshot, challenge, today)
	if err != nil {
		log.Println("ERROR:", err)
		return
	}

	d := report.Diagnostics
	if d.Clean() {
		return
	}
	log.Printf("WARN: synced %d runs with %d invalid dates, %d invalid distances, %d unknown statuses, %d dropped and %d duplicate participants, %d unregistered runners",
		len(snapshot.Runs), d.InvalidDates, d.InvalidDistances, d.UnknownStatuses, d.DroppedParticipants, d.DuplicateParticipants, d.OrphanRunners)
	if len(d.Warnings) > 0 {
		log.Println("WARN:", strings.Join(d.Warnings, "; "))
	}
}
