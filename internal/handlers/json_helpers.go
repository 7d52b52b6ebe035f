package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"eval-flow/internal/middleware"
	"eval-flow/internal/repository"
	"eval-flow/internal/service"
	"eval-flow/pkg/validator"
)

const maxBodyBytes = 1 << 20

var timeType = reflect.TypeOf(time.Time{})

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// JSONResponse writes data with status. Nil slices are encoded as [] instead of null.
func JSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(normalizeSlices(data)); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps service and repository errors to HTTP statuses
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError
	var fieldErr *validator.FieldError
	var conflictErr *repository.ConflictError

	switch {
	case errors.As(err, &validationErr):
		JSONResponse(w, http.StatusBadRequest, ErrorResponse{Error: validationErr.Error(), Field: validationErr.Field})
	case errors.As(err, &fieldErr):
		JSONResponse(w, http.StatusBadRequest, ErrorResponse{Error: fieldErr.Error(), Field: fieldErr.Field})
	case errors.As(err, &conflictErr):
		respondError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, ErrMsgPermissionDenied)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrNoAssignmentFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled):
		// client went away
		slog.DebugContext(r.Context(), "Request canceled", "path", r.URL.Path)
	default:
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgInternal)
	}
}

// decodeJSON decodes the body into dst and validates its tags
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &validator.FieldError{Field: "body", Rule: "json", Message: "is not valid JSON: " + err.Error()}
	}
	return validator.ValidateStruct(dst)
}

// pathUUID returns the path value name, which must be a UUID
func pathUUID(r *http.Request, name string) (string, error) {
	value := r.PathValue(name)
	if err := validator.ValidateUUID(name, value); err != nil {
		return "", err
	}
	return value, nil
}

// pathUUIDs resolves several UUID path values at once
func pathUUIDs(r *http.Request, names ...string) ([]string, error) {
	values := make([]string, len(names))
	for i, name := range names {
		v, err := pathUUID(r, name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// callerID returns the authenticated employee or writes 401
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return "", false
	}
	return id, true
}

// normalizeSlices recursively ensures all nil slices become empty slices
func normalizeSlices(data interface{}) interface{} {
	if data == nil {
		return nil
	}
	return normalizeValue(reflect.ValueOf(data)).Interface()
}

func normalizeValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() || v.Elem().Type() == timeType {
			return v
		}
		result := reflect.New(v.Elem().Type())
		result.Elem().Set(normalizeValue(v.Elem()))
		return result
	case reflect.Slice:
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0)
		}
		result := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			result.Index(i).Set(normalizeValue(v.Index(i)))
		}
		return result
	case reflect.Struct:
		if v.Type() == timeType {
			return v
		}
		result := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			result.Field(i).Set(normalizeValue(v.Field(i)))
		}
		return result
	default:
		return v
	}
}
