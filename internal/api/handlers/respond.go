package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wonny/tradecalc/internal/contracts"
)

// maxBodyBytes bounds a request body (trade or candle tables)
const maxBodyBytes = 16 << 20

// readBody reads the raw JSON body. GET requests carry a body too.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	return body, nil
}

// invalidValue is the message for a parameter outside its allowed set
func invalidValue(param string, value interface{}) string {
	return fmt.Sprintf("Invalid value for %s: %v", param, value)
}

// errorMessage maps a computation error to its HTTP status and message
func errorMessage(err error) (int, string) {
	var colErr *contracts.ColumnError
	switch {
	case errors.As(err, &colErr):
		return http.StatusBadRequest, fmt.Sprintf("Invalid columns in candlestick, %s not found", colErr.Column)
	case contracts.IsClientError(err):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
