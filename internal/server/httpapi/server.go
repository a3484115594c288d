// Package httpapi is the thin HTTP transport over the core services. It
// parses requests, forwards them to the services, and translates tagged
// failures into status codes; it holds no business logic of its own.
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sara-git-hub/diabcare/internal/logging"
	"github.com/sara-git-hub/diabcare/internal/server/predictor"
	"github.com/sara-git-hub/diabcare/internal/server/services"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

type Server struct {
	address   string
	logger    logging.Logger
	db        *sql.DB
	predictor *predictor.Predictor
	users     *services.UserService
	sessions  *services.SessionService
	patients  *services.PatientService
}

func NewServer(address string, logger logging.Logger, db *sql.DB, pred *predictor.Predictor,
	us *services.UserService, ss *services.SessionService, ps *services.PatientService) *Server {
	return &Server{
		address:   address,
		logger:    logger.With("module", "httpapi"),
		db:        db,
		predictor: pred,
		users:     us,
		sessions:  ss,
		patients:  ps,
	}
}

// Router assembles the route table. Everything under /api/patients and
// the logout route require a valid bearer session token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)

			r.Post("/logout", s.handleLogout)
			r.Post("/patients", s.handleCreatePatient)
			r.Get("/patients", s.handleListPatients)
			r.Get("/patients/stats", s.handlePatientStats)
			r.Delete("/patients/{id}", s.handleDeletePatient)
		})
	})

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
