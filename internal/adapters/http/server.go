package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"launchaudit/internal/ports"
	"launchaudit/internal/workers/auditrunner"
)

// Server is the thin HTTP surface over the audit core. No auth, payments or
// rendering live here.
type Server struct {
	audits    ports.Audits
	reports   ports.Reports
	jobs      ports.JobRepository
	processor auditrunner.AuditProcessor
	limiter   *rateLimiter
}

func New(audits ports.Audits, reports ports.Reports, jobs ports.JobRepository, processor auditrunner.AuditProcessor, store ports.Store, clock ports.Clock) *Server {
	return &Server{
		audits:    audits,
		reports:   reports,
		jobs:      jobs,
		processor: processor,
		limiter:   newRateLimiter(store, clock, auditRateLimit, auditRateWindow),
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.With(s.limiter.middleware).Post("/audits", s.handleCreateAudit)
	r.Get("/audits/{id}", s.handleGetAudit)
	r.Get("/reports/{domain}", s.handleGetReport)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
