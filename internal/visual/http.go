package visual

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gonum.org/v1/plot/vg"

	"znn/internal/logging"
)

// Progress is the JSON view of the latest snapshot.
type Progress struct {
	Iter         int       `json:"iter"`
	Eta          float64   `json:"eta"`
	Cost         float64   `json:"cost"`
	ClsErr       float64   `json:"cls_err"`
	TestIter     *int      `json:"test_iter,omitempty"`
	TestCost     *float64  `json:"test_cost,omitempty"`
	TestClsErr   *float64  `json:"test_cls_err,omitempty"`
	TrainSamples int       `json:"train_samples"`
	TestSamples  int       `json:"test_samples"`
	Elapsed      string    `json:"elapsed"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HTTPSurface keeps the latest frame in memory and serves it, for training
// runs on machines without a display.
//
//	GET /api/v1/health      liveness
//	GET /api/v1/progress    Progress as JSON
//	GET /api/v1/figure.png  the rendered figure
type HTTPSurface struct {
	Width  vg.Length
	Height vg.Length

	mu       sync.RWMutex
	frame    []byte
	progress *Progress

	router *gin.Engine
	srv    *http.Server
	logger *logging.Logger
	now    func() time.Time
}

func NewHTTPSurface(logger *logging.Logger) *HTTPSurface {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &HTTPSurface{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		logger: logger,
		now:    time.Now,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	api := router.Group("/api/v1")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/progress", s.handleProgress)
		api.GET("/figure.png", s.handleFigure)
	}
	s.router = router
	return s
}

// Handler exposes the routes for embedding in another server.
func (s *HTTPSurface) Handler() http.Handler { return s.router }

// Start listens on addr and serves in the background until Close. An addr
// with port 0 picks a free port; Addr reports it.
func (s *HTTPSurface) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("progress server: %w", err)
	}
	s.srv = &http.Server{
		Addr:    ln.Addr().String(),
		Handler: s.router,
	}

	go func() {
		s.logger.Info("Progress server listening on %s", s.srv.Addr)
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Progress server error: %v", err)
		}
	}()
	return nil
}

// Addr is the address the server listens on, or "" before Start.
func (s *HTTPSurface) Addr() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.Addr
}

func (s *HTTPSurface) Draw(snap *Snapshot) error {
	var buf bytes.Buffer
	if err := WritePNG(&buf, snap, s.Width, s.Height); err != nil {
		return err
	}

	progress := &Progress{
		Iter:         snap.Iter,
		Eta:          snap.Eta,
		Cost:         snap.Cost,
		ClsErr:       snap.ClsErr,
		TrainSamples: snap.Train.Len(),
		TestSamples:  snap.Test.Len(),
		UpdatedAt:    s.now(),
	}
	if !snap.Start.IsZero() {
		progress.Elapsed = s.now().Sub(snap.Start).Truncate(time.Second).String()
	}
	if iter, cost, cls, ok := snap.Test.Last(); ok {
		progress.TestIter = &iter
		progress.TestCost = &cost
		progress.TestClsErr = &cls
	}

	s.mu.Lock()
	s.frame = buf.Bytes()
	s.progress = progress
	s.mu.Unlock()
	return nil
}

func (s *HTTPSurface) Close() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("progress server shutdown: %w", err)
	}
	s.logger.Info("Progress server stopped")
	return nil
}

func (s *HTTPSurface) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPSurface) handleProgress(c *gin.Context) {
	s.mu.RLock()
	progress := s.progress
	s.mu.RUnlock()

	if progress == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame drawn yet"})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (s *HTTPSurface) handleFigure(c *gin.Context) {
	s.mu.RLock()
	frame := s.frame
	s.mu.RUnlock()

	if frame == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame drawn yet"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", frame)
}
