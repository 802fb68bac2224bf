package rest

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const loggerKey contextKey = "requestLogger"

// RequestLogger tags each inbound request with a unique identifier and stores
// a request-scoped field logger in its context, for handlers to retrieve.
func (e *Engine) RequestLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {

			reqUUID, err := uuid.NewV4()
			if err != nil {
				e.baseLogger.WithError(err).Error("can't generate a request UUID")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			var logger = e.baseLogger.WithFields(logrus.Fields{
				"reqid":     reqUUID.String(),
				"remote-ip": request.RemoteAddr,
			})
			logger.Debugf("%s %s", request.Method, request.URL.Path)

			next.ServeHTTP(w, request.WithContext(context.WithValue(request.Context(), loggerKey, logger)))
		})
	}
}

// Logger returns the request-scoped logger, falling back to a bare one when
// the request never traversed the RequestLogger middleware (ie. in tests).
func Logger(request *http.Request) logrus.FieldLogger {
	if logger, ok := request.Context().Value(loggerKey).(logrus.FieldLogger); ok {
		return logger
	}
	return logrus.New()
}
