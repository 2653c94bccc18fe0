package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	accesshandler "internship-portal/backend/internal/access/handler"
	"internship-portal/backend/internal/logger"
	"internship-portal/backend/internal/platform/rbac"
	profilehandler "internship-portal/backend/internal/profile/handler"
	sessionhandler "internship-portal/backend/internal/session/handler"
)

// RouterOptions holds the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterOptions struct {
	Session     *sessionhandler.Handler
	Access      *accesshandler.Handler
	Profile     *profilehandler.Handler
	Sessions    rbac.SessionSource
	CORSOrigins []string
	Logger      *zap.Logger
}

// DefaultCORSOrigins are the front-end dev servers allowed when none are configured.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = DefaultCORSOrigins
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"Location", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles the agent's HTTP API under /api.
// Profile routes require a settled session with a role.
func NewRouter(opts RouterOptions) chi.Router {
	log := logger.OrGlobal(opts.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(opts.CORSOrigins)))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		if opts.Session != nil {
			opts.Session.Routes(r)
		}
		if opts.Access != nil {
			opts.Access.Routes(r)
		}
		if opts.Profile != nil && opts.Sessions != nil {
			r.Group(func(r chi.Router) {
				r.Use(rbac.RequireSession(opts.Sessions))
				opts.Profile.Routes(r)
			})
		}
	})
	return r
}

// requestLogger logs one line per request with zap in place of chi's stdlib logger.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote_ip", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// NewHTTPServer wraps handler in an http.Server with the agent's timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
