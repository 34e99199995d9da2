// Package server provides the embeddable HTTP surface for the supervisor:
// status, start and stop per service, plus health and Prometheus metrics.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/metrics"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/supervisor"
)

// Router exposes HTTP handlers over a set of supervisors.
// Endpoints:
//
//	GET  {basePath}/status        query: service=... (optional; all when empty)
//	POST {basePath}/start         query: service=...&doc_dir=...
//	POST {basePath}/stop          query: service=...
//
// The status of a stale or stopped service is reported in the body, not as
// an HTTP error; only unknown services and failed operations return errors.
type Router struct {
	sups     map[string]*supervisor.Supervisor
	order    []string
	basePath string
}

// NewRouter constructs a Router over sups. basePath may be empty or start
// with '/'; no trailing slash.
func NewRouter(sups []*supervisor.Supervisor, basePath string) *Router {
	r := &Router{sups: make(map[string]*supervisor.Supervisor, len(sups)), basePath: sanitizeBase(basePath)}
	for _, s := range sups {
		name := s.Spec().Name
		r.sups[name] = s
		r.order = append(r.order, name)
	}
	return r
}

// Handler returns an http.Handler powered by gin that can be mounted in any
// server or mux.
func (r *Router) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/status", r.handleStatus)
	group.POST("/start", r.handleStart)
	group.POST("/stop", r.handleStop)
	g.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer returns a standalone HTTP server on addr using this router.
func NewServer(addr, basePath string, sups []*supervisor.Supervisor) *http.Server {
	r := NewRouter(sups, basePath)
	return &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (r *Router) lookup(c *gin.Context) (*supervisor.Supervisor, bool) {
	name := c.Query("service")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service query parameter is required"})
		return nil, false
	}
	s, ok := r.sups[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown service: " + name})
		return nil, false
	}
	return s, true
}

func (r *Router) handleStatus(c *gin.Context) {
	if name := c.Query("service"); name != "" {
		s, ok := r.sups[name]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown service: " + name})
			return
		}
		c.JSON(http.StatusOK, statusOf(s))
		return
	}
	out := make([]supervisor.Status, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, statusOf(r.sups[name]))
	}
	c.JSON(http.StatusOK, out)
}

// statusOf folds the coded not-running/stale errors into the Status value.
func statusOf(s *supervisor.Supervisor) supervisor.Status {
	st, _ := s.Status(10)
	return st
}

func (r *Router) handleStart(c *gin.Context) {
	s, ok := r.lookup(c)
	if !ok {
		return
	}
	docDir := c.Query("doc_dir")
	if docDir == "" {
		docDir = s.Spec().DefaultDocDir
	}
	if err := s.Start(docDir); err != nil {
		var ce *supervisor.CodedError
		if errors.As(err, &ce) {
			c.JSON(http.StatusConflict, gin.H{"error": ce.Msg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, statusOf(s))
}

func (r *Router) handleStop(c *gin.Context) {
	s, ok := r.lookup(c)
	if !ok {
		return
	}
	if err := s.Stop(); err != nil {
		var ce *supervisor.CodedError
		if errors.As(err, &ce) {
			c.JSON(http.StatusConflict, gin.H{"error": ce.Msg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": s.Spec().Name, "state": supervisor.StateStopped})
}

func sanitizeBase(bp string) string {
	if bp == "" {
		return ""
	}
	if bp[0] != '/' {
		bp = "/" + bp
	}
	for len(bp) > 1 && bp[len(bp)-1] == '/' {
		bp = bp[:len(bp)-1]
	}
	return bp
}
