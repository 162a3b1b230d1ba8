package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"FileVault/internal/storage"

	"go.uber.org/zap"
)

// linkStore — хранилище, которое само проверяет свои подписанные ссылки (локальный бэкенд).
type linkStore interface {
	VerifyLink(ref, token string) error
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// StorageHandler раздаёт объекты локального хранилища по подписанным ссылкам.
type StorageHandler struct {
	Store  linkStore
	Logger *zap.SugaredLogger
}

func NewStorageHandler(store linkStore, logger *zap.SugaredLogger) *StorageHandler {
	return &StorageHandler{Store: store, Logger: logger}
}

func (h *StorageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimPrefix(r.URL.Path, storage.LinkPath)
	if err := h.Store.VerifyLink(ref, r.URL.Query().Get("token")); err != nil {
		writeMessage(w, http.StatusForbidden, "Invalid or expired link.")
		return
	}

	rc, err := h.Store.Open(r.Context(), ref)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeMessage(w, http.StatusNotFound, "File not found.")
			return
		}
		h.Logger.Errorw("storage link: open failed", "ref", ref, "error", err)
		writeMessage(w, http.StatusInternalServerError, "File storage operation failed.")
		return
	}
	defer rc.Close()

	name := path.Base(ref)
	w.Header().Set("Content-Disposition", attachment(name))
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, time.Time{}, rs)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warnw("storage link: stream interrupted", "ref", ref, "error", err)
	}
}
