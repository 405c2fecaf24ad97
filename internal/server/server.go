// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package server exposes an operator-facing HTTP+WebSocket surface over a
// running Context — not part of the collector's contract (spec.md §6 has
// no wire protocol), a host process embedding cyclegc wires this in to
// observe it. Grounded on the teacher's services/orchestrator gin router
// setup (cmd/trace/main.go, services/orchestrator/orchestrator.go):
// gin.New()+Recovery()+otelgin.Middleware, route groups, JSON handlers.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/vireolabs/cyclegc/internal/history"
	"github.com/vireolabs/cyclegc/internal/telemetry"
	"github.com/vireolabs/cyclegc/pkg/cyclegc"
	"github.com/vireolabs/cyclegc/pkg/logging"
)

// Server wraps a gin.Engine exposing graph introspection over a Context.
type Server struct {
	engine  *gin.Engine
	ctx     *cyclegc.Context
	history *history.Store    // optional; nil disables GET /history
	logTail *logging.RingTail // optional; nil disables GET /logs
	hub     *liveHub
}

// Option configures a Server.
type Option func(*Server)

// WithHistory mounts GET /history, backed by store.
func WithHistory(store *history.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithLogTail mounts GET /logs, returning tail's retained entries so an
// operator can inspect a running cyclegcd's recent log output without
// attaching to its stderr or log file.
func WithLogTail(tail *logging.RingTail) Option {
	return func(s *Server) { s.logTail = tail }
}

// New builds a Server for ctx. serviceName is passed to otelgin's
// middleware exactly as the teacher names its own service.
func New(ctx *cyclegc.Context, serviceName string, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: gin.New(),
		ctx:    ctx,
		hub:    newLiveHub(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(otelgin.Middleware(serviceName))

	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/graph", s.handleGraph)
	s.engine.GET("/metrics", gin.WrapH(telemetry.Handler()))
	s.engine.GET("/ws/live", s.handleLive)
	if s.history != nil {
		s.engine.GET("/history", s.handleHistory)
	}
	if s.logTail != nil {
		s.engine.GET("/logs", s.handleLogs)
	}

	return s
}

// Handler returns the underlying http.Handler for use with http.Server,
// httptest, or a custom listener.
func (s *Server) Handler() http.Handler { return s.engine }

// NotifyCollected pushes a fresh snapshot to every connected /ws/live
// client. Call this after each CollectCycles call; it is also wired
// automatically when a Server is built via cmd/cyclegcd serve.
func (s *Server) NotifyCollected() {
	s.hub.broadcastSnapshot(s.ctx)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
