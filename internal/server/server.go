// Пакет server — HTTP API переименования с graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ilkoid/airename/internal/server/handlers"
	"github.com/ilkoid/airename/internal/server/middleware"
	"github.com/ilkoid/airename/internal/server/service"
	"github.com/ilkoid/airename/pkg/app"
	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/utils"
)

// Server — HTTP-сервер API.
type Server struct {
	httpServer *http.Server
	cfg        config.ServerConfig
}

// New создаёт HTTP-сервер с маршрутами handler и middleware.
// middlewares добавляются в порядке переданного среза.
func New(cfg config.ServerConfig, handler *handlers.Handler, middlewares ...func(http.Handler) http.Handler) *Server {
	cfg = cfg.GetDefaults()

	router := chi.NewRouter()
	for _, mw := range middlewares {
		router.Use(mw)
	}
	handler.Register(router)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: srv,
		cfg:        cfg,
	}
}

// NewAPI собирает сервер со стандартными middleware поверх компонентов.
// ctx ограничивает фоновые пакеты сессий.
func NewAPI(ctx context.Context, comps *app.Components) *Server {
	sessions := service.NewSessionCache(comps.Config.Session)
	h := handlers.New(ctx, comps, sessions)
	return New(comps.Config.Server, h,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(),
	)
}

// Handler возвращает корневой обработчик (для httptest).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run запускает сервер и ждёт отмены ctx, после чего выполняет
// graceful shutdown с таймаутом server.shutdown_timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		utils.Info("HTTP server started", "addr", s.httpServer.Addr)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		utils.Info("Shutdown requested")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	utils.Info("HTTP server stopped")
	return nil
}
