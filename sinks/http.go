package sinks

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeu5/tabular-rl/types"
)

// Server exposes the series of a MemorySink over HTTP while the solver runs
type Server struct {
	Addr   string
	ctx    context.Context
	memory *types.MemorySink
	server *http.Server
}

// NewServer creates the server, it is shut down when ctx is cancelled
func NewServer(ctx context.Context, addr string, memory *types.MemorySink) *Server {
	s := &Server{
		Addr:   addr,
		ctx:    ctx,
		memory: memory,
	}

	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	return s
}

// Handler returns the router serving the scalar endpoints
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/scalars", s.handleScalars)
	r.GET("/scalars/:name", s.handleSeries)
	return r
}

func (s *Server) handleScalars(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"names":  s.memory.Names(),
		"series": s.memory.Snapshot(),
	})
}

func (s *Server) handleSeries(c *gin.Context) {
	name := c.Param("name")
	points, ok := s.memory.Series(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown series " + name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "points": points})
}

// Start binds the address and serves in the background.
// Errors binding the address are returned.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.Addr, err)
	}
	s.Addr = listener.Addr().String()

	go func() {
		s.server.Serve(listener)
	}()

	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()
	return nil
}
