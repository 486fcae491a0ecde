package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/radar/internal/api/handlers"
	"github.com/wonny/radar/internal/metrics"
	"github.com/wonny/radar/pkg/logger"
)

// RouterDeps collects what the router wires together
type RouterDeps struct {
	Screening *handlers.ScreeningHandler
	Health    *handlers.HealthHandler
	Metrics   *metrics.Registry // nil이면 /metrics 미노출
	Limiter   *rate.Limiter     // nil이면 무제한
	Logger    *logger.Logger
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", deps.Health.Health).Methods("GET")

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/classify", deps.Screening.Classify).Methods("POST")
	api.HandleFunc("/classify/{date}/{symbol}", deps.Screening.ClassifyStored).Methods("GET")
	api.HandleFunc("/scan", deps.Screening.Scan).Methods("POST")
	api.HandleFunc("/scan/{date}", deps.Screening.ScanByDate).Methods("GET")
	api.HandleFunc("/rules", deps.Screening.Rules).Methods("GET")
	api.Use(rateLimitMiddleware(deps.Limiter))

	// Apply middleware
	r.Use(loggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(recoveryMiddleware(deps.Logger))

	return r
}

// NewLimiter builds a token bucket; rps <= 0 disables limiting
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// statusRecorder captures the response status for logs and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests and records request metrics
func loggingMiddleware(log *logger.Logger, m *metrics.Registry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			elapsed := time.Since(start)
			m.ObserveHTTP(r.Method, route, rec.status, elapsed)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": elapsed.String(),
			}).Debug("HTTP request")
		})
	}
}

// rateLimitMiddleware rejects requests beyond the token bucket with 429
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
