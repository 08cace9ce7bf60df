// Package api serves the latest talent metrics report over HTTP and
// rebuilds it on demand or when the inputs change.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"talentmetrics/adapters/markdown"
	"talentmetrics/domain/report"
	"talentmetrics/internal"
	"talentmetrics/internal/errors"
	"talentmetrics/internal/gridcache"
	"talentmetrics/internal/telemetry"
)

// BuildFunc produces a fresh report
type BuildFunc func(ctx context.Context) (*report.Report, error)

// Deps are the collaborators of the server. Cache and Metrics are optional.
type Deps struct {
	Build   BuildFunc
	Cache   *gridcache.Cache
	Metrics *telemetry.Metrics
	Events  *EventHub
	Logger  *internal.Logger
	// Title heads the HTML dashboard
	Title string
}

// Server holds the latest successful report and the routes that expose it
type Server struct {
	router *gin.Engine
	deps   Deps
	logger *internal.Logger

	// building serializes rebuilds
	building sync.Mutex

	mu        sync.RWMutex
	latest    *report.Report
	lastErr   error
	lastBuild time.Time
}

// NewServer creates the server and registers its routes
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}
	if deps.Events == nil {
		deps.Events = NewEventHub(deps.Logger)
	}
	if deps.Title == "" {
		deps.Title = "Talent Metrics"
	}
	s := &Server{
		router: gin.New(),
		deps:   deps,
		logger: deps.Logger.Named("api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Events returns the hub the server broadcasts on
func (s *Server) Events() *EventHub {
	return s.deps.Events
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d in %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	})
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleDashboard)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/report", s.handleReport)
	api.GET("/tables", s.handleTables)
	api.GET("/tables/:name", s.handleTable)
	api.GET("/diagnostics", s.handleDiagnostics)
	api.GET("/cache", s.handleCache)
	api.POST("/refresh", s.handleRefresh)
	api.GET("/events", s.deps.Events.HandleSSE)

	if s.deps.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}
}

// Rebuild runs the pipeline once. On success the result replaces the
// served report; on failure the previous report stays up.
func (s *Server) Rebuild(ctx context.Context) (*report.Report, error) {
	s.building.Lock()
	defer s.building.Unlock()

	r, err := s.deps.Build(ctx)

	s.mu.Lock()
	s.lastBuild = time.Now()
	s.lastErr = err
	if err == nil {
		s.latest = r
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("rebuild failed: %v", err)
		s.deps.Events.Broadcast(BuildEvent{Type: EventBuildFailed, Data: map[string]interface{}{"error": err.Error()}})
		return r, err
	}
	s.deps.Events.Broadcast(BuildEvent{
		Type:  EventReportBuilt,
		RunID: r.RunID.String(),
		Data: map[string]interface{}{
			"tables":    len(r.Tables),
			"high_risk": r.Diagnostics.HighRisk,
			"clean":     r.Diagnostics.IsClean(),
		},
	})
	return r, nil
}

// InputChanged invalidates nothing itself; it announces the change and
// rebuilds. Wire it as the gridcache watch callback.
func (s *Server) InputChanged(ctx context.Context, path string) {
	s.logger.Info("input %s changed, rebuilding", path)
	s.deps.Events.Broadcast(BuildEvent{Type: EventInputChange, Data: map[string]interface{}{"path": path}})
	_, _ = s.Rebuild(ctx)
}

// Latest returns the served report, or nil before the first good build
func (s *Server) Latest() *report.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// tableSummary describes one table without its rows
type tableSummary struct {
	Name     string `json:"name"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	Degraded bool   `json:"degraded"`
}

func summarize(r *report.Report) []tableSummary {
	out := make([]tableSummary, len(r.Tables))
	for i, n := range r.Tables {
		out[i] = tableSummary{Name: n.Name, Rows: n.Table.Len(), Columns: n.Table.Width(), Degraded: n.Table.Degraded}
	}
	return out
}

// current writes a 503 and returns nil when no report is available yet
func (s *Server) current(c *gin.Context) *report.Report {
	s.mu.RLock()
	r, lastErr := s.latest, s.lastErr
	s.mu.RUnlock()
	if r == nil {
		body := gin.H{"error": "no report built yet"}
		if lastErr != nil {
			body["last_error"] = lastErr.Error()
		}
		c.JSON(http.StatusServiceUnavailable, body)
	}
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body := gin.H{"status": "ok", "has_report": s.latest != nil}
	if !s.lastBuild.IsZero() {
		body["last_build"] = s.lastBuild.UTC().Format(time.RFC3339)
	}
	if s.lastErr != nil {
		body["last_error"] = s.lastErr.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleReport(c *gin.Context) {
	r := s.current(c)
	if r == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":        r.RunID,
		"generated_at":  r.GeneratedAt,
		"label_version": r.LabelVersion,
		"tables":        summarize(r),
		"diagnostics":   r.Diagnostics,
	})
}

func (s *Server) handleTables(c *gin.Context) {
	r := s.current(c)
	if r == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": r.RunID, "tables": r.Names()})
}

func (s *Server) handleTable(c *gin.Context) {
	r := s.current(c)
	if r == nil {
		return
	}
	name := c.Param("name")
	t, ok := r.Table(name)
	if !ok {
		s.writeError(c, errors.NotFound("table "+name))
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "table": t})
}

func (s *Server) handleDiagnostics(c *gin.Context) {
	r := s.current(c)
	if r == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": r.RunID, "clean": r.Diagnostics.IsClean(), "diagnostics": r.Diagnostics})
}

func (s *Server) handleCache(c *gin.Context) {
	if s.deps.Cache == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled": true,
		"stats":   s.deps.Cache.Stats(),
		"keys":    s.deps.Cache.Keys(),
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	if c.Query("invalidate") == "true" && s.deps.Cache != nil {
		n := s.deps.Cache.InvalidateAll()
		s.logger.Info("dropped %d cached grids before refresh", n)
	}
	r, err := s.Rebuild(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": r.RunID, "tables": summarize(r), "diagnostics": r.Diagnostics})
}

func (s *Server) handleDashboard(c *gin.Context) {
	r := s.current(c)
	if r == nil {
		return
	}
	sink := markdown.NewHTMLSink("", s.deps.Title)
	for _, n := range r.Tables {
		if err := sink.WriteTable(c.Request.Context(), n.Name, n.Table); err != nil {
			s.writeError(c, err)
			return
		}
	}
	sink.WriteDiagnostics(r.Diagnostics)
	c.Data(http.StatusOK, "text/html; charset=utf-8", sink.Render())
}

// writeError maps an error code to an HTTP status
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeUpstreamLoad, errors.CodeDatabaseError, errors.CodeSinkError:
		status = http.StatusBadGateway
	case errors.CodeConfigInvalid:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
