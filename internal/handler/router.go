// Package handler はヘッドレスHTTPドライバのハンドラーとルーティングを提供する。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/livsmedel/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger            *slog.Logger
	Sessions          SessionRegistry
	HealthChecker     HealthChecker
	MetricsHandler    http.Handler
	StatusRecorder    middleware.StatusRecorder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RateLimit → NoStore（/api/sessions のみ）
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusRecorder))

	// --- 運用エンドポイント ---
	r.Get("/health", HealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	sessionHandler := NewSessionHandler(deps.Sessions)

	// --- 閲覧セッション ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}
		r.Use(middleware.NewSessionNoStoreMiddleware())

		r.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.DeleteSession)
				r.Put("/search", sessionHandler.Search)
				r.Post("/next", sessionHandler.NextPage)
				r.Post("/prev", sessionHandler.PrevPage)
				r.Put("/language", sessionHandler.SetLanguage)
				r.Post("/select", sessionHandler.Select)
			})
		})
	})

	return r
}
