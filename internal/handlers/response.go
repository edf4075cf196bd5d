package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}, logger logrus.FieldLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Warn("Failed to encode response")
	}
}

// serverError logs err and answers 500 without leaking details.
func serverError(w http.ResponseWriter, logger logrus.FieldLogger, msg string, err error) {
	logger.WithError(err).Error(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}

func orStandard(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
