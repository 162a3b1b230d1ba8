package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FileVault/internal/auth"
	"FileVault/internal/config"
	"FileVault/internal/handlers"
	"FileVault/internal/repo"
	"FileVault/internal/service"
	"FileVault/internal/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	srv    *httptest.Server
	cfg    *config.Config
	tokens *auth.JWTManager
}

// newTestEnv поднимает полный стек: in-memory SQLite, локальное хранилище во временном каталоге,
// настоящий роутер за httptest.Server (адрес сервера нужен для подписанных ссылок).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		AuthSecret:      "test-secret",
		AuthConfirmUser: true,
		TokenTTL:        time.Hour,
		LinkTTL:         time.Hour,
		FileMaxSizeMB:   1,
		CORSOrigin:      "https://localhost:5173",
	}
	logger := zap.NewNop().Sugar()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repo.InitDB("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var router http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	store, err := storage.NewLocalStore(t.TempDir(), srv.URL, cfg.AuthSecret)
	require.NoError(t, err)

	tokens := auth.NewJWTManager(cfg.AuthSecret, cfg.TokenTTL)
	userSvc := service.NewUserService(repo.NewUserRepository(db), tokens)
	contentSvc := service.NewContentService(
		repo.NewFolderRepository(db), repo.NewFileRepository(db), store, cfg.LinkTTL, cfg.FileMaxBytes(), logger,
	)
	h := handlers.NewHandler(userSvc, contentSvc, store, tokens, logger, cfg)
	t.Cleanup(h.Close)
	router = h.Router

	return &testEnv{srv: srv, cfg: cfg, tokens: tokens}
}

// do выполняет запрос к серверу; body сериализуется в JSON, если не nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return send(t, req)
}

func (e *testEnv) upload(t *testing.T, folderID, token, filename, content string) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("newFile", filename)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(content))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/content/folder/"+folderID+"/upload-file", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return send(t, req)
}

func send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

// signUpAndLogin регистрирует пользователя и возвращает его токен.
func (e *testEnv) signUpAndLogin(t *testing.T, name, password string) string {
	t.Helper()
	resp, _ := e.do(t, http.MethodPost, "/api/user/sign-up", "", map[string]string{
		"username": name, "password": password, "confirmPassword": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": name, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lr handlers.LoginResponse
	require.NoError(t, json.Unmarshal(body, &lr))
	require.NotEmpty(t, lr.Token)
	return lr.Token
}

func (e *testEnv) addFolder(t *testing.T, token, name string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/content/add-folder", token, map[string]string{"newFolder": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var fr struct {
		Folder struct {
			ID string `json:"id"`
		} `json:"folder"`
	}
	require.NoError(t, json.Unmarshal(body, &fr))
	return fr.Folder.ID
}

func decodeMap(t *testing.T, body []byte) map[string]any {
	t.Helper()
	m := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}
