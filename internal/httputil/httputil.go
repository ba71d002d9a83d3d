package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Validator is shared by all handlers; validator caches struct metadata per instance.
var Validator = validator.New(validator.WithRequiredStructEnabled())

// NewRouter creates a chi router with standard middleware (RequestID, RealIP, Timeout, Recoverer, Logger).
func NewRouter(log *slog.Logger, timeout time.Duration) *chi.Mux {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))
	r.Use(Recoverer(log))
	r.Use(RequestLogger(log))

	return r
}

// WriteJSON writes a JSON response with proper headers.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(body)
}

// DecodeJSON reads a JSON request body into v and validates it.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return Validator.Struct(v)
}

// HealthHandler returns a simple health check endpoint.
func HealthHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Warn("healthz write failed", "err", err)
		}
	}
}

// ServeHealth runs a bare health server for background workers.
func ServeHealth(log *slog.Logger, service string, port int) *http.Server {
	r := chi.NewRouter()
	r.Get("/healthz", HealthHandler(log))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("health server listening", "service", service, "addr", srv.Addr)
	return srv
}

// RequestLogger is a lightweight HTTP logger that uses slog.
func RequestLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Recoverer logs panics via slog and answers with the JSON error envelope.
func Recoverer(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic recovered", "panic", rec, "path", r.URL.Path, "method", r.Method, "request_id", middleware.GetReqID(r.Context()))
					WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: fmt.Sprint(rec)})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ErrorBody is the envelope for every error response.
type ErrorBody struct {
	Error    string `json:"error"`
	Provider string `json:"provider,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

// Fail writes an error envelope with consistent logging.
func Fail(log *slog.Logger, w http.ResponseWriter, message string, err error, status int) {
	FailWith(log, w, ErrorBody{Error: message}, err, status)
}

// FailWith is Fail with a fully populated envelope.
func FailWith(log *slog.Logger, w http.ResponseWriter, body ErrorBody, err error, status int) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		log.Error(body.Error, "err", err, "status", status)
	} else {
		log.Warn(body.Error, "err", err, "status", status)
	}
	WriteJSON(w, status, body)
}

// ValidationError reports a request that failed decoding or struct validation as 400.
func ValidationError(log *slog.Logger, w http.ResponseWriter, err error) {
	Fail(log, w, validationMessage(err), err, http.StatusBadRequest)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	var missing, invalid []string
	for _, fe := range verrs {
		name := jsonName(fe)
		if fe.Tag() == "required" {
			missing = append(missing, name)
		} else {
			invalid = append(invalid, name)
		}
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing "+strings.Join(missing, " or "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "Invalid "+strings.Join(invalid, " or "))
	}
	return strings.Join(parts, "; ")
}

// jsonName lower-cases the struct field name, which matches the request field names used here.
func jsonName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}
