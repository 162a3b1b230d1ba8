package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"FileVault/internal/config"
	"FileVault/internal/middleware"
	"FileVault/internal/model"
	"FileVault/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// запас сверх лимита файла на служебные части multipart
const multipartOverhead = 1 << 20

// ContentHandler папки и файлы текущего пользователя.
type ContentHandler struct {
	ContentService *service.ContentService
	Logger         *zap.SugaredLogger
	Config         *config.Config
}

func NewContentHandler(contentService *service.ContentService, logger *zap.SugaredLogger, cfg *config.Config) *ContentHandler {
	return &ContentHandler{ContentService: contentService, Logger: logger, Config: cfg}
}

type FolderResponse struct {
	Message string        `json:"message,omitempty"`
	Folder  *model.Folder `json:"folder"`
}

// FolderFiles папка со списком файлов; files есть в ответе всегда, у пустой папки это [].
type FolderFiles struct {
	*model.Folder
	Files []model.File `json:"files"`
}

type FolderFilesResponse struct {
	Folder FolderFiles `json:"folder"`
}

type FileDTO struct {
	model.File
	SignedURL string     `json:"signedUrl,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type FileResponse struct {
	Message string  `json:"message,omitempty"`
	File    FileDTO `json:"file"`
}

type FileDetailsResponse struct {
	File *model.File `json:"file"`
	Date time.Time   `json:"date"`
}

type SignedURLResponse struct {
	Message   string    `json:"message"`
	SignedURL string    `json:"signedUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
	FileName  string    `json:"fileName"`
}

func userID(r *http.Request) string {
	uid, _ := middleware.GetUserIDFromContext(r.Context())
	return uid
}

// AddFolder создание папки
func (h *ContentHandler) AddFolder(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		writeError(w, h.Logger, err, "")
		return
	}
	folder, err := h.ContentService.CreateFolder(r.Context(), userID(r), f["newFolder"])
	if err != nil {
		writeError(w, h.Logger, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, FolderResponse{Message: "Folder created successfully", Folder: folder})
}

// GetFolder папка для формы редактирования
func (h *ContentHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := h.ContentService.GetFolder(r.Context(), userID(r), chi.URLParam(r, "folderId"))
	if err != nil {
		writeError(w, h.Logger, err, "Folder")
		return
	}
	writeJSON(w, http.StatusOK, FolderResponse{Message: "Folder retrieved successfully", Folder: folder})
}

// EditFolder переименование папки
func (h *ContentHandler) EditFolder(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		writeError(w, h.Logger, err, "")
		return
	}
	folder, err := h.ContentService.RenameFolder(r.Context(), userID(r), chi.URLParam(r, "folderId"), f["editFolder"])
	if err != nil {
		writeError(w, h.Logger, err, "Folder")
		return
	}
	writeJSON(w, http.StatusOK, FolderResponse{Message: "Folder updated successfully", Folder: folder})
}

// DeleteFolder удаление папки вместе с файлами
func (h *ContentHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.ContentService.DeleteFolder(r.Context(), userID(r), chi.URLParam(r, "folderId")); err != nil {
		writeError(w, h.Logger, err, "Folder")
		return
	}
	writeMessage(w, http.StatusOK, "Folder deleted successfully")
}

// ListFiles папка с файлами
func (h *ContentHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folder, err := h.ContentService.ListFiles(r.Context(), userID(r), chi.URLParam(r, "folderId"))
	if err != nil {
		writeError(w, h.Logger, err, "Folder")
		return
	}
	files := folder.Files
	if files == nil {
		files = []model.File{}
	}
	writeJSON(w, http.StatusOK, FolderFilesResponse{Folder: FolderFiles{Folder: folder, Files: files}})
}

// GetFile метаданные файла
func (h *ContentHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.ContentService.GetFile(r.Context(), userID(r), chi.URLParam(r, "fileId"))
	if err != nil {
		writeError(w, h.Logger, err, "File")
		return
	}
	writeJSON(w, http.StatusOK, FileDetailsResponse{File: file, Date: file.UploadedAt})
}

// UploadFile загрузка файла (multipart, поле newFile)
func (h *ContentHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.Config.FileMaxBytes()
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, h.Logger, service.ErrFileTooLarge, "")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file data received.")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.Logger.Warnw("UploadFile: cleanup multipart temp files", "error", err)
		}
	}()

	src, hdr, err := r.FormFile("newFile")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file data received.")
		return
	}
	defer src.Close()

	file, err := h.ContentService.UploadFile(r.Context(), userID(r), chi.URLParam(r, "folderId"), service.Upload{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        src,
	})
	if err != nil {
		writeError(w, h.Logger, err, "Folder")
		return
	}

	dto := FileDTO{File: *file}
	// ссылка — бонус к ответу: файл уже сохранён, даже если подписать не удалось
	if link, err := h.ContentService.SignFile(r.Context(), file); err != nil {
		h.Logger.Warnw("UploadFile: signed link unavailable", "file_id", file.ID, "error", err)
	} else {
		dto.SignedURL = link.URL
		dto.ExpiresAt = &link.ExpiresAt
	}
	writeJSON(w, http.StatusCreated, FileResponse{Message: "File uploaded successfully", File: dto})
}

// DeleteFile удаление файла из папки
func (h *ContentHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	err := h.ContentService.DeleteFile(r.Context(), userID(r), chi.URLParam(r, "folderId"), chi.URLParam(r, "fileId"))
	if err != nil {
		writeError(w, h.Logger, err, "File")
		return
	}
	writeMessage(w, http.StatusOK, "File deleted successfully")
}

// SignedURL подписанная ссылка на скачивание
func (h *ContentHandler) SignedURL(w http.ResponseWriter, r *http.Request) {
	file, link, err := h.ContentService.FileLink(r.Context(), userID(r), chi.URLParam(r, "folderId"), chi.URLParam(r, "fileId"))
	if err != nil {
		writeError(w, h.Logger, err, "File")
		return
	}
	writeJSON(w, http.StatusOK, SignedURLResponse{
		Message:   "Signed URL generated successfully",
		SignedURL: link.URL,
		ExpiresAt: link.ExpiresAt,
		FileName:  file.Name,
	})
}

// Download отдаёт содержимое файла через сервер
func (h *ContentHandler) Download(w http.ResponseWriter, r *http.Request) {
	file, rc, err := h.ContentService.OpenFile(r.Context(), userID(r), chi.URLParam(r, "fileId"))
	if err != nil {
		writeError(w, h.Logger, err, "File")
		return
	}
	defer rc.Close()

	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", attachment(file.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warnw("Download: stream interrupted", "file_id", file.ID, "error", err)
	}
}

func attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
