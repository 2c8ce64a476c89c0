package web

import (
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/sqlite3/v2"
	"uocsclub.net/runchallenge/internal/engine"
	"uocsclub.net/runchallenge/internal/export"
	"uocsclub.net/runchallenge/internal/types"
	"uocsclub.net/runchallenge/internal/web/templates"
)

// SnapshotSource is where the server reads the latest synced data from.
type SnapshotSource interface {
	GetSnapshot() (types.Snapshot, error)
}

type Server struct {
	App    *fiber.App
	source SnapshotSource
	config ServerConfig
	store  *session.Store

	// Now is the clock used for "today". Tests replace it.
	Now func() time.Time
}

type ServerConfig struct {
	Port                int
	SessionDatabasePath string
	LeaderboardSize     int
	Challenge           engine.Config
}

func InitServer(config ServerConfig, source SnapshotSource) *Server {
	if config.LeaderboardSize <= 0 {
		config.LeaderboardSize = 25
	}

	s := &Server{
		App: fiber.New(fiber.Config{
			UnescapePath: true,
		}),
		source: source,
		config: config,
		store: session.New(session.Config{
			Storage: sqlite3.New(sqlite3.Config{
				Database: config.SessionDatabasePath,
			}),
		}),
		Now: time.Now,
	}

	s.App.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,OPTIONS",
		AllowHeaders:     "Accept,Content-Type",
		AllowCredentials: false, // credentials require explicit origins
		MaxAge:           300,
	}))

	s.App.Use("/assets", filesystem.New(filesystem.Config{
		Root:       http.FS(AssetsEFS),
		PathPrefix: "assets",
		Browse:     false,
	}))

	api := s.App.Group("/api")
	api.Get("/report", s.HandleReport)
	api.Get("/leaderboard", s.HandleLeaderboard)
	api.Get("/stations", s.HandleStations)
	api.Get("/finishers", s.HandleFinishers)
	api.Get("/consistency", s.HandleConsistency)
	api.Get("/diagnostics", s.HandleDiagnostics)
	api.Get("/journey/:serviceNumber", s.HandleJourney)

	s.App.Get("/export/:view", s.HandleExport)
	s.App.Get("/me/:serviceNumber", s.HandleMe)
	s.App.Get("/logout", s.HandleLogout)
	s.App.Get("/", s.HandleRoot)

	return s
}

func (s *Server) Listen() error {
	return s.App.Listen(fmt.Sprintf(":%d", s.config.Port))
}

type viewResponse[T any] struct {
	Today     types.Day `json:"today"`
	FetchedAt string    `json:"fetchedAt,omitempty"`
	Entries   T         `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// report computes the engine report for the current snapshot. A failed read
// and a failed computation are both server errors; an empty snapshot is not.
func (s *Server) report() (*engine.Report, types.Snapshot, error) {
	snapshot, err := s.source.GetSnapshot()
	if err != nil {
		return nil, snapshot, fmt.Errorf("read snapshot: %w", err)
	}

	today := types.DayOf(s.Now(), s.config.Challenge.Location)
	report, err := engine.Compute(snapshot, s.config.Challenge, today)
	if err != nil {
		return nil, snapshot, fmt.Errorf("compute report: %w", err)
	}
	return report, snapshot, nil
}

func fetchedAt(snapshot types.Snapshot) string {
	if snapshot.FetchedAt.IsZero() {
		return ""
	}
	return snapshot.FetchedAt.UTC().Format(time.RFC3339)
}

func serverError(c *fiber.Ctx, err error) error {
	log.Println(err)
	return c.Status(http.StatusInternalServerError).JSON(errorResponse{Error: "report unavailable"})
}

func (s *Server) HandleReport(c *fiber.Ctx) error {
	report, _, err := s.report()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(report)
}

func (s *Server) HandleLeaderboard(c *fiber.Ctx) error {
	report, snapshot, err := s.report()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(viewResponse[[]types.Ranked[types.RunnerTotals]]{
		Today:     report.Today,
		FetchedAt: fetchedAt(snapshot),
		Entries:   report.Leaderboard,
	})
}

func (s *Server) HandleStations(c *fiber.Ctx) error {
	report, snapshot, err := s.report()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(viewResponse[[]types.Ranked[types.StationScore]]{
		Today:     report.Today,
		FetchedAt: fetchedAt(snapshot),
		Entries:   report.Stations,
	})
}

func (s *Server) HandleFinishers(c *fiber.Ctx) error {
	report, snapshot, err := s.report()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(viewResponse[[]types.Finisher]{
		Today:     report.Today,
		FetchedAt: fetchedAt(snapshot),
		Entries:   report.Finishers,
	})
}

func (s *Server) HandleConsistency(c *fiber.Ctx) error {
	report, snapshot, err := s.report()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(viewResponse[[]types.ConsistencyEntry]{
		Today:     report.Today,
		FetchedAt: fetchedAt(snapshot),
		Entries:   report.Consistency,
	})
}

func (s *Server) HandleDiagnostics(c *fiber.Ctx) error {
	report, snapshot, err := s.report()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(viewResponse[engine.Diagnostics]{
		Today:     report.Today,
		FetchedAt: fetchedAt(snapshot),
		Entries:   report.Diagnostics,
	})
}

func (s *Server) HandleJourney(c *fiber.Ctx) error {
	serviceNumber := strings.TrimSpace(c.Params("serviceNumber"))

	report, _, err := s.report()
	if err != nil {
		return serverError(c, err)
	}

	journey, err := report.Journey(serviceNumber)
	if err != nil {
		return serverError(c, err)
	}
	if journey == nil {
		return c.Status(http.StatusNotFound).JSON(errorResponse{Error: "not a finisher"})
	}

	return c.JSON(struct {
		ServiceNumber string `json:"serviceNumber"`
		*types.Completion
	}{serviceNumber, journey})
}

func (s *Server) HandleExport(c *fiber.Ctx) error {
	view := strings.TrimSuffix(c.Params("view"), ".csv")
	if !slices.Contains(export.Views, view) {
		return c.Status(http.StatusNotFound).JSON(errorResponse{Error: export.ErrUnknownView.Error()})
	}

	report, _, err := s.report()
	if err != nil {
		return serverError(c, err)
	}

	c.Attachment(fmt.Sprintf("%s-%s.csv", view, report.Today))
	c.Set("Content-Type", "text/csv; charset=utf-8")
	return export.Write(c.Response().BodyWriter(), view, report)
}

func (s *Server) HandleRoot(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return c.SendStatus(http.StatusInternalServerError)
	}

	report, snapshot, err := s.report()
	if err != nil {
		log.Println(err)
		return c.SendStatus(http.StatusInternalServerError)
	}

	highlight, _ := sess.Get("service_number").(string)

	return s.Render(c, templates.LandingPage(
		report,
		highlight,
		snapshot.FetchedAt,
		s.config.LeaderboardSize,
	))
}

// HandleMe remembers which runner is viewing so their rows stay highlighted.
func (s *Server) HandleMe(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return c.SendStatus(http.StatusInternalServerError)
	}

	serviceNumber := strings.TrimSpace(c.Params("serviceNumber"))
	if len(serviceNumber) == 0 {
		return redirect(c, "/")
	}

	sess.Set("service_number", serviceNumber)
	if err := sess.Save(); err != nil {
		log.Println(err)
		return c.SendStatus(http.StatusInternalServerError)
	}

	return redirect(c, "/")
}

func (s *Server) HandleLogout(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err == nil {
		sess.Destroy()
	}

	return redirect(c, "/")
}

func (s *Server) Render(c *fiber.Ctx, component templ.Component) error {
	c.Set("Content-Type", "text/html")
	context := c.Context()

	renderOrder := []func(templ.Component) templ.Component{}

	if c.Get("HX-Request") != "true" {
		renderOrder = append(renderOrder, templates.Index)
	}

	// we need to render bottom-up
	for i := len(renderOrder) - 1; i >= 0; i -= 1 {
		component = renderOrder[i](component)
	}

	return component.Render(context, c.Response().BodyWriter())
}

func redirect(c *fiber.Ctx, target string) error {
	// if there is htmx loaded, force a full redirect
	if c.Get("HX-Request") == "true" {
		c.Set("HX-Redirect", target)
		return c.SendStatus(200)
	}

	// no HTMX, native redirect will work
	return c.Redirect(target)
}
