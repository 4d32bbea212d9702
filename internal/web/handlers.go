package web

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/premiscsv2xml/internal/core"
	"github.com/JonMunkholm/premiscsv2xml/internal/logging"
)

// multipartMemory is the part of an upload kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// missingUploadError reports a form file field that was not submitted.
type missingUploadError struct {
	Field string
}

func (e *missingUploadError) Error() string {
	return "no file provided: " + e.Field
}

// handleConvert converts the uploaded objects and events tables and responds
// with the PREMIS document.
//
// Form fields: objects (file), events (file), user (text).
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Acquire(r.Context()); err != nil {
		status := http.StatusServiceUnavailable
		if !errors.Is(err, core.ErrTooManyConversions) {
			status = http.StatusRequestTimeout
		}
		s.respondError(w, r, err, status)
		return
	}
	defer s.limiter.Release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.respondError(w, r, fmt.Errorf("file too large: %w", err), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("invalid upload: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	objects, objectsHeader, err := formFile(r, "objects")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer objects.Close()

	events, eventsHeader, err := formFile(r, "events")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer events.Close()

	operator := strings.TrimSpace(r.FormValue("user"))
	if operator == "" {
		operator = "anonymous"
	}

	runID := uuid.NewString()
	ctx := logging.ContextWithRunID(r.Context(), runID)
	w.Header().Set("X-Run-ID", runID)

	res, err := s.converter.ConvertReaders(ctx, core.ReaderInput{
		Objects:     objects,
		ObjectsName: objectsHeader.Filename,
		Events:      events,
		EventsName:  eventsHeader.Filename,
		Operator:    operator,
		Source:      core.SourceHTTP,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsInputError(err) {
			status = http.StatusBadRequest
		}
		s.respondError(w, r.WithContext(ctx), err, status)
		return
	}

	// Serialize before writing headers so a failure can still become an error response.
	var buf bytes.Buffer
	if _, err := res.Document.WriteTo(&buf, s.indent); err != nil {
		s.respondError(w, r.WithContext(ctx), err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="premis.xml"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	f, h, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, &missingUploadError{Field: field}
		}
		return nil, nil, fmt.Errorf("read %s upload: %w", field, err)
	}
	return f, h, nil
}
