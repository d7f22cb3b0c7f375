package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/facebookgo/clock"

	"github.com/iudanet/atmtrack/internal/config"
	"github.com/iudanet/atmtrack/internal/models"
	"github.com/iudanet/atmtrack/internal/server/handlers"
	"github.com/iudanet/atmtrack/internal/server/middleware"
	"github.com/iudanet/atmtrack/internal/server/storage"
)

const (
	// APIPrefix общий префикс всех эндпоинтов
	APIPrefix = "/api"

	loginRate         = 10
	loginWindow       = time.Minute
	tokenCleanupEvery = time.Hour
	shutdownTimeout   = 10 * time.Second
)

// Store хранилище, которое нужно серверу
type Store interface {
	storage.UserStorage
	storage.TokenStorage
	storage.MaintenanceStorage
	handlers.Pinger
}

// Server dev backend обслуживания банкоматов
type Server struct {
	cfg     *config.Server
	store   Store
	logger  *slog.Logger
	clock   clock.Clock
	limiter *middleware.RateLimiter
	handler http.Handler
}

// New собирает роутер со всеми обработчиками
func New(cfg *config.Server, store Store, logger *slog.Logger, clk clock.Clock, version string) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		clock:   clk,
		limiter: middleware.NewRateLimiter(loginRate, loginWindow, clk, logger),
	}

	jwtConfig := handlers.JWTConfig{
		Secret:          []byte(cfg.JWTSecret),
		AccessTokenTTL:  cfg.AccessTTL,
		RefreshTokenTTL: cfg.RefreshTTL,
	}

	health := handlers.NewHealthHandler(logger, store, version)
	auth := handlers.NewAuthHandler(logger, store, store, jwtConfig)
	technician := handlers.NewTechnicianHandler(logger, store, clk)
	supervisor := handlers.NewSupervisorHandler(logger, store)
	host := handlers.NewHostHandler(logger, store, store, cfg.BcryptCost)

	authenticated := middleware.AuthMiddleware(logger, jwtConfig)
	role := func(h http.HandlerFunc, roles ...string) http.Handler {
		return middleware.Chain(h, authenticated, middleware.RequireRole(logger, roles...))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET "+APIPrefix+"/health", health.Health)

	mux.Handle("POST "+APIPrefix+"/auth/login", s.limiter.Middleware(http.HandlerFunc(auth.Login)))
	mux.HandleFunc("POST "+APIPrefix+"/auth/token/refresh", auth.Refresh)

	mux.Handle("GET "+APIPrefix+"/technician/devices", role(technician.Devices, models.RoleTechnician))
	mux.Handle("POST "+APIPrefix+"/technician/submit", role(technician.Submit, models.RoleTechnician))

	mux.Handle("GET "+APIPrefix+"/supervisor/submissions", role(supervisor.Submissions, models.RoleSupervisor))
	mux.Handle("GET "+APIPrefix+"/supervisor/submissions/{id}", role(supervisor.Submission, models.RoleSupervisor))
	mux.Handle("PATCH "+APIPrefix+"/supervisor/submissions/{id}/approve", role(supervisor.Approve, models.RoleSupervisor))
	mux.Handle("PATCH "+APIPrefix+"/supervisor/submissions/{id}/reject", role(supervisor.Reject, models.RoleSupervisor))
	mux.Handle("GET "+APIPrefix+"/supervisor/dashboard-stats", role(supervisor.Stats, models.RoleSupervisor))

	mux.Handle("GET "+APIPrefix+"/host/technicians/{$}", role(host.Technicians, models.RoleHost))
	mux.Handle("POST "+APIPrefix+"/host/technicians/{$}", role(host.CreateTechnician, models.RoleHost))
	mux.Handle("DELETE "+APIPrefix+"/host/technicians/{id}/{$}", role(host.DeleteTechnician, models.RoleHost))
	mux.Handle("GET "+APIPrefix+"/host/technicians/{id}/uploaded-types", role(host.UploadedTypes, models.RoleHost))
	mux.Handle("GET "+APIPrefix+"/host/technicians/{id}/uploaded-files", role(host.UploadedFiles, models.RoleHost))
	mux.Handle("POST "+APIPrefix+"/host/upload-excel", role(host.ImportDevices, models.RoleHost))
	mux.Handle("GET "+APIPrefix+"/host/dashboard-stats", role(host.Stats, models.RoleHost, models.RoleSupervisor))

	s.handler = middleware.Chain(mux,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger, APIPrefix+"/health"),
	)

	return s
}

// Handler возвращает корневой http.Handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run слушает cfg.Addr до отмены ctx, затем корректно завершает работу
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	go s.cleanupTokens(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("server exited gracefully")
	return nil
}

// Close освобождает фоновые ресурсы
func (s *Server) Close() {
	s.limiter.Stop()
}

// cleanupTokens периодически удаляет просроченные refresh токены
func (s *Server) cleanupTokens(ctx context.Context) {
	ticker := s.clock.Ticker(tokenCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.DeleteExpiredTokens(ctx, s.clock.Now())
			if err != nil {
				s.logger.Warn("failed to delete expired tokens", "error", err)
				continue
			}
			if deleted > 0 {
				s.logger.Info("expired refresh tokens deleted", "count", deleted)
			}
		}
	}
}
