// Package preview serves generation over HTTP so editors and UIs can render a
// schema without touching the file system.
//
// Overview:
//   - Responsibility: Validate a request schema and project, render the selected
//     targets in memory, return files and diagnostics as JSON
//   - Key Types: Server, RenderRequest, RenderResponse
//   - Concurrency Model: Requests are handled concurrently; each builds its own
//     pipeline over a shared, concurrency-safe template loader
//   - Error Semantics: 400 with diagnostics for invalid input, 500 for render failures
//   - Performance Notes: Nothing is written; templates are parsed once per Server
//
// Usage:
//
//	srv := preview.NewServer(preview.WithLogger(logger))
//	err := srv.ListenAndServe(ctx, ":8090")
package preview

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/core/log"
	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/generators"
	"go.eggybyte.com/stackgen/internal/schema"
	"go.eggybyte.com/stackgen/internal/templates"
	"go.eggybyte.com/stackgen/internal/typemap"
	"go.eggybyte.com/stackgen/internal/version"
)

// DefaultAddr is the listen address used by `stackgen serve`.
const DefaultAddr = ":8090"

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 15 * time.Second

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	Entities []schema.Entity             `json:"entities"`
	Project  *configschema.ProjectConfig `json:"project"`
	Targets  []string                    `json:"targets,omitempty"` // Empty selects every target
}

// RenderResponse is the body of a successful render.
type RenderResponse struct {
	Files       []generators.File         `json:"files"`
	Diagnostics []configschema.Diagnostic `json:"diagnostics"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error       string                    `json:"error"`
	Message     string                    `json:"message,omitempty"`
	Diagnostics []configschema.Diagnostic `json:"diagnostics,omitempty"`
}

// Server is the preview HTTP API.
type Server struct {
	engine *gin.Engine
	loader *templates.Loader
	logger log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoader sets the template loader used for rendering.
func WithLoader(loader *templates.Loader) Option {
	return func(s *Server) {
		if loader != nil {
			s.loader = loader
		}
	}
}

// NewServer builds the gin engine and registers every route.
func NewServer(opts ...Option) *Server {
	s := &Server{logger: log.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = templates.NewLoader()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), securityHeaders(), s.requestLogger())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   http.StatusText(http.StatusNotFound),
			Message: "path " + c.Request.URL.Path + " not found",
		})
	})

	r.GET("/healthz", s.health)
	v1 := r.Group("/v1")
	{
		v1.GET("/targets", s.targets)
		v1.POST("/render", s.render)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr (DefaultAddr when empty) until ctx is
// cancelled, then shuts down gracefully.
//
// Returns:
//   - error: UNAVAILABLE if the listener fails; nil after a clean shutdown
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("preview server started", log.Str("addr", addr))

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrapf(errors.CodeUnavailable, "preview.ListenAndServe", err, "listen on %s", addr)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down preview server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(err, "failed to shut down preview server")
		return errors.Wrap(errors.CodeInternal, "preview.Shutdown", err)
	}
	s.logger.Info("preview server stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

func (s *Server) targets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"targets": typemap.AllTargets})
}

func (s *Server) render(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: "invalid JSON: " + err.Error(),
		})
		return
	}

	diags := configschema.NewDiagnostics()
	sch := &schema.EntitySchema{Entities: req.Entities}
	configschema.CheckEntities(sch, diags)
	if req.Project == nil {
		diags.AddError("project is required", "project", `Send {"project": {"name": ..., ...}}`)
	} else {
		configschema.CheckProject(req.Project, diags)
	}
	targets, err := typemap.ParseTargets(req.Targets)
	if err != nil {
		diags.AddError(err.Error(), "targets", "")
	}

	if diags.HasErrors() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:       http.StatusText(http.StatusBadRequest),
			Message:     diags.Err("preview.render").Error(),
			Diagnostics: diags.Items(),
		})
		return
	}

	p := generators.NewPipeline(nil, nil,
		generators.WithTargets(targets...),
		generators.WithLoader(s.loader),
		generators.WithLogger(s.logger))
	files, err := p.Plan(c.Request.Context(), sch, req.Project)
	if err != nil {
		s.logger.Error(err, "render failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:       http.StatusText(http.StatusInternalServerError),
			Message:     err.Error(),
			Diagnostics: diags.Items(),
		})
		return
	}

	c.JSON(http.StatusOK, RenderResponse{Files: files, Diagnostics: diags.Items()})
}

// securityHeaders sets the response headers every API response carries.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request handled",
			log.Str("method", c.Request.Method),
			log.Str("path", c.Request.URL.Path),
			log.Int("status", c.Writer.Status()),
			log.Dur("duration", time.Since(start)))
	}
}
