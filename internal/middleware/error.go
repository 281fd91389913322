package middleware

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"syscall"

	"ecostore/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrorEnvelope is the body of every error that reaches the error handler.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Path    string `json:"path,omitempty"`
}

// ErrorResponse is the body handlers write for anticipated failures.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// AppHandler is an HTTP handler that hands unexpected failures back to the
// error handler instead of writing them itself.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// Postgres SQLSTATE codes the classifier recognizes.
const (
	pgUniqueViolation   = "23505"
	pgCheckViolation    = "23514"
	pgUndefinedColumn   = "42703"
	pgDataExceptionFrom = "22"
)

// Classify maps an error to an HTTP status and a client-safe message.
func Classify(err error) (int, string) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, "Validation failed"
	}

	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound, "Resource not found"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return http.StatusConflict, "Resource already exists"
		case pgErr.Code == pgUndefinedColumn,
			pgErr.Code == pgCheckViolation,
			strings.HasPrefix(pgErr.Code, pgDataExceptionFrom):
			return http.StatusBadRequest, "Invalid field"
		}
	}

	if isConnectionError(err) {
		return http.StatusServiceUnavailable, "Database connection error"
	}

	return http.StatusInternalServerError, "Internal Server Error"
}

func isConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(err.Error(), "connection refused")
}

// ErrorHandler turns errors returned by handlers, panics and unmatched
// routes into the error envelope.
type ErrorHandler struct {
	logger      *zap.Logger
	showDetails bool
}

// NewErrorHandler creates an ErrorHandler. Raw error text is only exposed
// to clients outside production.
func NewErrorHandler(logger *zap.Logger, production bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, showDetails: !production}
}

// Handle adapts fn to http.HandlerFunc.
func (h *ErrorHandler) Handle(fn AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.Respond(w, r, err)
		}
	}
}

// Respond classifies err, logs it once and writes the envelope.
func (h *ErrorHandler) Respond(w http.ResponseWriter, r *http.Request, err error) {
	status, message := Classify(err)

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, fields...)
	} else {
		h.logger.Warn(message, fields...)
	}

	envelope := ErrorEnvelope{Error: message}
	if h.showDetails {
		envelope.Details = err.Error()
	}
	RespondWithJSON(w, status, envelope)
}

// Recoverer catches panics and answers with a 500 envelope.
func (h *ErrorHandler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			h.logger.Error("Panic recovered",
				zap.Any("error", rec),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Stack("stack"),
			)

			envelope := ErrorEnvelope{Error: "Internal Server Error"}
			if h.showDetails {
				envelope.Details = fmt.Sprint(rec)
			}
			RespondWithJSON(w, http.StatusInternalServerError, envelope)
		}()

		next.ServeHTTP(w, r)
	})
}

// NotFound answers requests no route matched.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusNotFound, ErrorEnvelope{Error: "Route not found", Path: r.URL.Path})
}

// MethodNotAllowed answers requests whose path matched with another method.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusMethodNotAllowed, ErrorEnvelope{Error: "Method not allowed", Path: r.URL.Path})
}

// RespondWithError sends {"error": message}
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// RespondWithValidationErrors sends a 400 listing every validation message
func RespondWithValidationErrors(w http.ResponseWriter, messages []string) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: messages})
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
