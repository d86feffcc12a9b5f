// ABOUTME: JSON response helpers for the board API
// ABOUTME: Maps store and pipeline errors onto HTTP status codes
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body := []byte("null")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// statusFor picks the status code for an error coming out of the store or board.
func statusFor(err error) int {
	var te *pipeline.TransitionError
	switch {
	case errors.As(err, &te):
		if models.IsNotFound(te.Err) {
			return http.StatusNotFound
		}
		return http.StatusConflict
	case models.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation), errors.Is(err, pipeline.ErrInvalidStage):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var details any
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		details = verrs
	}
	JSONError(w, statusFor(err), err.Error(), details)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return models.ValidationErrors{"body": err.Error()}
	}
	return nil
}
