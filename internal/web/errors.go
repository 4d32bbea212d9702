package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped via core.NewUserError to get a coded message
//  4. Technical error is logged with request and run IDs
//  5. The coded message is returned as JSON, plus a detail for input errors
//
// The technical error stays in the log; clients get the code instead.

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/premiscsv2xml/internal/core"
	"github.com/JonMunkholm/premiscsv2xml/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"` // Offending column, row or field; input errors only
}

// respondError logs the technical error and writes a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	ue := core.NewUserError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", ue.Technical.Error(),
		"code", ue.User.Code,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   ue.User.Message,
		Message: ue.User.Message,
		Action:  ue.User.Action,
		Code:    ue.User.Code,
		Detail:  errorDetail(err),
	})
}

// errorDetail names the part of the upload that caused an input error.
// The typed errors below only carry values the client sent.
func errorDetail(err error) string {
	if !core.IsInputError(err) {
		return ""
	}

	var (
		missingField *core.MissingFieldError
		identifier   *core.IdentifierError
		parse        *csv.ParseError
		missing      *missingUploadError
	)
	switch {
	case errors.As(err, &missingField):
		return missingField.Error()
	case errors.As(err, &identifier):
		return identifier.Error()
	case errors.As(err, &parse):
		return parse.Error()
	case errors.As(err, &missing):
		return missing.Error()
	}
	return ""
}
