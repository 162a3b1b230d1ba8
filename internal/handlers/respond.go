package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"FileVault/internal/auth"
	"FileVault/internal/service"

	"go.uber.org/zap"
)

const maxFormBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string               `json:"message"`
	Errors  []service.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError — единственное место, где ошибки сервиса превращаются в HTTP-статус.
// subject подставляется в сообщения 404 ("Folder", "File").
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, err error, subject string) {
	var ve *service.ValidationError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, validationResponse{Message: "Validation failed", Errors: ve.Fields})
	case errors.As(err, &mbe), errors.Is(err, service.ErrFileTooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "File is too large.")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
	case errors.Is(err, auth.ErrMissingToken):
		writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
	case errors.Is(err, auth.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token.")
	case errors.Is(err, service.ErrAccessDenied):
		writeMessage(w, http.StatusForbidden, "Access denied. Folder not found or does not belong to user.")
	case errors.Is(err, service.ErrNotFound):
		if subject == "" {
			subject = "Resource"
		}
		writeMessage(w, http.StatusNotFound, subject+" not found or access denied.")
	case errors.Is(err, service.ErrNameTaken):
		writeMessage(w, http.StatusConflict, "Username already taken.")
	case errors.Is(err, service.ErrFileExists):
		writeMessage(w, http.StatusConflict, "A file with this name already exists in the folder.")
	case errors.Is(err, service.ErrStorage):
		logger.Errorw("storage failure", "error", err)
		writeMessage(w, http.StatusInternalServerError, "File storage operation failed.")
	default:
		logger.Errorw("unhandled error", "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

// readFields читает поля тела запроса: JSON-объект или urlencoded-форму.
// Нестроковые JSON-значения приводятся к строке.
func readFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		parse := r.ParseForm
		if ct == "multipart/form-data" {
			parse = func() error { return r.ParseMultipartForm(maxFormBytes) }
		}
		if err := parse(); err != nil {
			return nil, badBody(err)
		}
		out := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			out[k] = r.PostForm.Get(k)
		}
		return out, nil
	}

	raw := map[string]any{}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, badBody(err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
		default:
			out[k] = strings.TrimSpace(fmt.Sprint(t))
		}
	}
	return out, nil
}

func badBody(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return err
	}
	return &service.ValidationError{Fields: []service.FieldError{{Field: "body", Message: "Invalid request body"}}}
}
