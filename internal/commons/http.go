package commons

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"dorebell/internal/domain"
	"dorebell/internal/dto"
	apperrors "dorebell/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TraceHeader = "X-Trace-Id"

	MsgValidationFailed = "Validation failed"
	MsgTooManyRequests  = "Too many requests. Please try again later."
	MsgInternalError    = "Internal server error"
	MsgMethodNotAllowed = "Method not allowed"
	MsgNotFound         = "Not found"

	unknownClient = "unknown"
)

// StartTrace assigns a trace id to the request, echoes it in the response
// headers and returns a logger carrying it.
func StartTrace(w http.ResponseWriter, logger *zap.Logger) (string, *zap.Logger) {
	traceID := uuid.New().String()
	w.Header().Set(TraceHeader, traceID)
	return traceID, logger.With(zap.String("traceId", traceID))
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	WriteJSON(w, status, dto.ErrorResponse{Error: message}, logger)
}

func WriteValidationError(w http.ResponseWriter, ve *apperrors.ValidationError, logger *zap.Logger) {
	WriteJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		Error:   MsgValidationFailed,
		Details: ve.Messages(),
	}, logger)
}

// DecodeJSON reads a JSON body of at most maxBytes into dst. Malformed or
// oversized bodies come back as a *ValidationError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewValidationError(MsgValidationFailed, apperrors.ValidationDetail{
				Field:   "body",
				Message: fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit),
			})
		}
		return apperrors.NewValidationError(MsgValidationFailed, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}

// ClientKey identifies the caller for rate limiting by the host of the
// connection's remote address. Forwarding headers are resolved into
// RemoteAddr by the router only for trusted proxies.
func ClientKey(r *http.Request) string {
	if r.RemoteAddr == "" {
		return unknownClient
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	if host == "" {
		return unknownClient
	}
	return host
}

func ClientInfo(r *http.Request) domain.ClientInfo {
	url := r.Header.Get("Origin")
	if url == "" {
		url = r.Header.Get("Referer")
	}
	return domain.ClientInfo{
		IP:        ClientKey(r),
		UserAgent: r.UserAgent(),
		URL:       url,
	}
}
