package commands

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FileVault/internal/config"
)

// newFakeAPI минимальная имитация content-маршрутов сервера.
func newFakeAPI(t *testing.T) (*httptest.Server, *config.Config) {
	t.Helper()
	mux := http.NewServeMux()
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Access denied. No token provided."}`))
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("GET /api/{$}", auth(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"folders":[{"id":"f1","name":"Photos"},{"id":"f2","name":"Docs"}]}`))
	}))
	mux.HandleFunc("POST /api/content/add-folder", auth(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Folder created successfully","folder":{"id":"f3","name":"` + req["newFolder"] + `"}}`))
	}))
	mux.HandleFunc("POST /api/content/{id}/edit-folder", auth(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		_, _ = w.Write([]byte(`{"folder":{"id":"` + r.PathValue("id") + `","name":"` + req["editFolder"] + `"}}`))
	}))
	mux.HandleFunc("POST /api/content/{id}/delete-folder", auth(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "f1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Folder not found or access denied."}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Folder deleted successfully"}`))
	}))
	mux.HandleFunc("GET /api/content/folder/{id}/files", auth(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"folder":{"id":"f1","name":"Photos","files":[{"id":"x1","name":"cat.jpg","size":42,"uploadedAt":"2024-01-01T00:00:00Z"}]}}`))
	}))
	mux.HandleFunc("POST /api/content/folder/{id}/upload-file", auth(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("newFile")
		if err != nil {
			http.Error(w, `{"message":"No file data received."}`, http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "File uploaded successfully",
			"file":    map[string]any{"id": "x2", "name": hdr.Filename, "size": len(b), "signedUrl": "http://files/x2"},
		})
	}))
	mux.HandleFunc("GET /api/content/files/{id}", auth(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"file":{"id":"x1","name":"cat.jpg","size":42,"contentType":"image/jpeg","folderId":"f1","uploadedAt":"2024-01-01T00:00:00Z"}}`))
	}))
	mux.HandleFunc("POST /api/content/files/{folder}/{id}/delete-file", auth(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"File deleted successfully"}`))
	}))
	mux.HandleFunc("GET /api/content/files/{folder}/{id}/signed-url", auth(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"signedUrl":"http://files/x1?token=t","expiresAt":"2030-01-01T00:00:00Z"}`))
	}))
	mux.HandleFunc("GET /api/download/{id}", auth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="cat.jpg"`)
		_, _ = w.Write([]byte("meow"))
	}))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	cfg := withTempConfig(t)
	cfg.ServerURL = ts.URL
	if err := authStore(cfg).Save("tok"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	return ts, cfg
}

func run(t *testing.T, cmd Command, cfg *config.Config, args ...string) string {
	t.Helper()
	return withStdoutCapture(t, func() {
		if err := cmd.Run(context.Background(), cfg, args); err != nil {
			t.Fatalf("%s: %v", cmd.Name(), err)
		}
	})
}

func TestFolderCommands(t *testing.T) {
	_, cfg := newFakeAPI(t)

	out := run(t, foldersCmd{}, cfg)
	if !strings.Contains(out, "Photos") || !strings.Contains(out, "Total: 2") {
		t.Fatalf("folders output: %q", out)
	}
	if out := run(t, mkdirCmd{}, cfg, "Music"); !strings.Contains(out, "Created folder Music (id f3)") {
		t.Fatalf("mkdir output: %q", out)
	}
	if out := run(t, renameCmd{}, cfg, "f1", "Pics"); !strings.Contains(out, "renamed to Pics") {
		t.Fatalf("rename output: %q", out)
	}
	if out := run(t, rmdirCmd{}, cfg, "f1"); !strings.Contains(out, "Folder deleted") {
		t.Fatalf("rmdir output: %q", out)
	}
	err := (rmdirCmd{}).Run(context.Background(), cfg, []string{"zzz"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}

	for _, c := range []Command{mkdirCmd{}, renameCmd{}, rmdirCmd{}} {
		if err := c.Run(context.Background(), cfg, nil); err != ErrUsage {
			t.Fatalf("%s: expected ErrUsage, got %v", c.Name(), err)
		}
	}
}

func TestFileCommands(t *testing.T) {
	_, cfg := newFakeAPI(t)

	if out := run(t, filesCmd{}, cfg, "f1"); !strings.Contains(out, "cat.jpg") {
		t.Fatalf("files output: %q", out)
	}
	if out := run(t, infoCmd{}, cfg, "x1"); !strings.Contains(out, "image/jpeg") {
		t.Fatalf("info output: %q", out)
	}
	if out := run(t, linkCmd{}, cfg, "f1", "x1"); !strings.Contains(out, "http://files/x1?token=t") {
		t.Fatalf("link output: %q", out)
	}
	if out := run(t, rmCmd{}, cfg, "f1", "x1"); !strings.Contains(out, "File deleted") {
		t.Fatalf("rm output: %q", out)
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	out := run(t, uploadCmd{}, cfg, "f1", src)
	if !strings.Contains(out, "Uploaded notes.txt (id x2, 5 bytes)") || !strings.Contains(out, "Link: http://files/x2") {
		t.Fatalf("upload output: %q", out)
	}
	if err := (uploadCmd{}).Run(context.Background(), cfg, []string{"f1", filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("expected error for missing local file")
	}

	// скачивание в каталог берёт имя из Content-Disposition
	dl := t.TempDir()
	run(t, downloadCmd{}, cfg, "x1", dl)
	b, err := os.ReadFile(filepath.Join(dl, "cat.jpg"))
	if err != nil || string(b) != "meow" {
		t.Fatalf("downloaded file: %q %v", b, err)
	}
	// и в явный путь
	target := filepath.Join(dl, "copy.jpg")
	run(t, downloadCmd{}, cfg, "x1", target)
	if b, _ := os.ReadFile(target); string(b) != "meow" {
		t.Fatalf("downloaded copy: %q", b)
	}
	entries, _ := os.ReadDir(dl)
	if len(entries) != 2 {
		t.Fatalf("temp files must not be left behind, got %d entries", len(entries))
	}
}

func TestContentCommands_RequireLogin(t *testing.T) {
	_, cfg := newFakeAPI(t)
	_ = authStore(cfg).Clear()
	if err := (foldersCmd{}).Run(context.Background(), cfg, nil); err != errNotLoggedIn {
		t.Fatalf("expected errNotLoggedIn, got %v", err)
	}
}
