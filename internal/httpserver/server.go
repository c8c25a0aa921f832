package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"loopwise-go/internal/api"
	"loopwise-go/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	defaultMaxBodyBytes = 1 << 20
	requestTimeout      = 60 * time.Second
)

// Server exposes the controller as a JSON API.
type Server struct {
	controller   *api.Controller
	validate     *validator.Validate
	maxBodyBytes int64
	httpServer   *http.Server
}

func NewServer(cfg models.ServerConfig, controller *api.Controller) *Server {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	s := &Server{
		controller:   controller,
		validate:     validator.New(),
		maxBodyBytes: maxBody,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(cfg.AllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Router builds the chi route tree.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.getState)
		r.Get("/events", s.getEvents)
		r.Put("/view", s.setView)

		r.Route("/session", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/signup", s.signup)
			r.Get("/username/{username}", s.checkUsername)
			r.Post("/profile-setup", s.completeProfileSetup)
			r.Post("/logout", s.logout)
		})

		r.Route("/suggestions", func(r chi.Router) {
			r.Post("/refresh", s.refreshSuggestions)
			r.Post("/{id}/apply", s.applySuggestion)
			r.Post("/{id}/dismiss", s.dismissSuggestion)
		})

		r.Route("/subscriptions/{id}", func(r chi.Router) {
			r.Put("/status", s.changeStatus)
			r.Put("/plan", s.changePlan)
		})

		r.Get("/balance", s.getBalance)
		r.Route("/funds", func(r chi.Router) {
			r.Post("/deposit", s.addFunds)
			r.Post("/schedule", s.schedulePayment)
			r.Post("/send", s.sendFunds)
			r.Post("/settle", s.settle)
		})
		r.Put("/transactions/{id}/notes", s.setNotes)

		r.Post("/chat/messages", s.sendMessage)

		r.Route("/team", func(r chi.Router) {
			r.Post("/invite", s.inviteMember)
			r.Post("/resend", s.resendInvite)
			r.Delete("/{id}", s.removeMember)
		})

		r.Put("/profile", s.updateProfile)
		r.Put("/profile/avatar", s.updateAvatar)
		r.Delete("/sessions/{id}", s.revokeSession)

		r.Route("/settings", func(r chi.Router) {
			r.Put("/notifications", s.updateNotificationSettings)
			r.Put("/preferences", s.updatePreferences)
			r.Post("/theme/toggle", s.toggleTheme)
		})
		r.Post("/notifications/read", s.markNotificationsRead)

		r.Route("/audit", func(r chi.Router) {
			r.Get("/export", s.exportCSV)
			r.Post("/import", s.importCSV)
			r.Get("/summary", s.summary)
		})
	})
	return r
}

// ListenAndServe blocks until the server stops. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	zap.L().Info("HTTP API listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
