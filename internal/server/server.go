// Package server is the browser form for editing line items and downloading
// the invoice PDF.
//
// The invoice state lives in the form itself. Every POST carries the whole
// state back, the server replays it into an Editor, applies the button that
// was pressed and renders the form again. No state is kept between requests.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"billgen/internal/config"
	"billgen/internal/invoice"
	"billgen/internal/logger"
	"billgen/internal/render"
	"billgen/pkg/models"
)

//go:embed templates/form.html
var templateFS embed.FS

// MaxBodyBytes caps request bodies for the form and the JSON API.
const MaxBodyBytes = 1 << 20

// Renderer produces the invoice document for a state snapshot.
type Renderer interface {
	Render(ctx context.Context, state models.InvoiceState) (*render.Document, error)
	Options() invoice.Options
	Profile() *config.Profile
}

// Server serves the invoice form and its JSON endpoints.
type Server struct {
	router   *mux.Router
	renderer Renderer
	form     *template.Template
	log      zerolog.Logger
}

// New builds the router around renderer.
func New(renderer Renderer) (*Server, error) {
	form, err := template.ParseFS(templateFS, "templates/form.html")
	if err != nil {
		return nil, fmt.Errorf("parse form template: %w", err)
	}

	s := &Server{
		router:   mux.NewRouter(),
		renderer: renderer,
		form:     form,
		log:      logger.WithComponent("server"),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(requestLogger, recoverer)

	s.router.HandleFunc("/", s.indexHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.formHandler).Methods(http.MethodPost)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/amount", s.amountHandler).Methods(http.MethodGet)
	api.HandleFunc("/invoice", s.invoiceHandler).Methods(http.MethodPost)

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then drains open
// requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Invoice form listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("Shutting down invoice form")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
