package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/hashdrop/internal/transport/web/v1/files"
	"github.com/EgorLis/hashdrop/internal/transport/web/v1/health"
)

type Server struct {
	log    *log.Logger
	server *http.Server
}

type Deps struct {
	Workflow      files.Workflow
	MaxUploadSize int64
	DB            health.Pinger
	Cache         health.Pinger
	Storage       health.Pinger
	Metrics       http.Handler
}

func New(logger *log.Logger, addr string, deps Deps) *Server {
	healthLog := log.New(logger.Writer(), logger.Prefix()+"[health] ", logger.Flags())
	filesLog := log.New(logger.Writer(), logger.Prefix()+"[files] ", logger.Flags())

	healthHandler := &health.Handler{Log: healthLog, DB: deps.DB, Cache: deps.Cache, Storage: deps.Storage}
	filesHandler := &files.Handler{Log: filesLog, Workflow: deps.Workflow, MaxUploadSize: deps.MaxUploadSize}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(healthHandler, filesHandler, deps.Metrics, logger),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
