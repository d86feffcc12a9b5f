// ABOUTME: Web server for the pipeline board
// ABOUTME: Serves the drag-and-drop board page, the JSON API, and Prometheus metrics
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/pipeline"
)

//go:embed templates/*
var templatesFS embed.FS

const shutdownTimeout = 10 * time.Second

type Server struct {
	store     db.RecordStore
	board     *pipeline.Board
	logger    *log.Logger
	metrics   *Metrics
	templates *template.Template
	mux       *http.ServeMux
}

// NewServer wires the routes. metrics should be the same instance whose
// ObserveTransition was handed to the board.
func NewServer(store db.RecordStore, board *pipeline.Board, logger *log.Logger, metrics *Metrics) (*Server, error) {
	funcMap := template.FuncMap{
		"money": func(v float64) string {
			return "$" + humanize.Commaf(v)
		},
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("Jan 2")
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if metrics == nil {
		metrics = NewMetrics()
	}

	s := &Server{
		store:     store,
		board:     board,
		logger:    logger,
		metrics:   metrics,
		templates: tmpl,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleBoardPage)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("GET /api/board", s.handleGetBoard)
	s.mux.HandleFunc("POST /api/board/moves", s.handleMove)

	s.mux.HandleFunc("GET /api/deals", s.handleListDeals)
	s.mux.HandleFunc("POST /api/deals", s.handleCreateDeal)
	s.mux.HandleFunc("GET /api/deals/{id}", s.handleGetDeal)
	s.mux.HandleFunc("PATCH /api/deals/{id}", s.handleUpdateDeal)
	s.mux.HandleFunc("DELETE /api/deals/{id}", s.handleDeleteDeal)

	s.mux.HandleFunc("GET /api/contacts", s.handleListContacts)
	s.mux.HandleFunc("POST /api/contacts", s.handleCreateContact)
	s.mux.HandleFunc("DELETE /api/contacts/{id}", s.handleDeleteContact)

	s.mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	s.mux.HandleFunc("POST /api/tasks/{id}/toggle", s.handleToggleTask)

	s.mux.HandleFunc("GET /api/activities", s.handleListActivities)
	s.mux.HandleFunc("POST /api/activities", s.handleLogActivity)

	s.mux.HandleFunc("GET /api/quotes", s.handleListQuotes)
	s.mux.HandleFunc("POST /api/quotes", s.handleCreateQuote)

	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
}

// Handler is the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return withRequestID(withLogging(s.logger, s.metrics, s.mux))
}

// Start serves on port until ctx is cancelled or the process gets SIGINT or
// SIGTERM, then drains in-flight requests.
func (s *Server) Start(ctx context.Context, port int) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", "http://localhost"+srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}

func (s *Server) handleBoardPage(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Load(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	term := r.URL.Query().Get("q")
	groups := s.board.Groups()
	data := map[string]any{
		"Title":   "Deal Pipeline",
		"Columns": s.board.Columns(term),
		"Summary": pipeline.Summarize(groups),
		"Query":   term,
	}
	s.renderTemplate(w, "board.html", data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
