package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// FieldError ошибка валидации поля из ответа 400.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error ответ сервера с кодом не 2xx. Message берётся из поля "message" JSON-тела.
type Error struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		return fmt.Sprintf("server status %d", e.Status)
	}
	for _, f := range e.Fields {
		msg += fmt.Sprintf("; %s: %s", f.Field, f.Message)
	}
	return fmt.Sprintf("server status %d: %s", e.Status, msg)
}

// IsStatus сообщает, что err — ответ сервера с указанным кодом.
func IsStatus(err error, status int) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == status
}

// Client HTTP-клиент FileVault API. Token передаётся как Bearer.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromBody(resp.StatusCode, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorFromBody(status int, body []byte) error {
	var m struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	if err := json.Unmarshal(body, &m); err != nil || m.Message == "" {
		m.Message = strings.TrimSpace(string(body))
	}
	return &Error{Status: status, Message: m.Message, Fields: m.Errors}
}

// GetJSON выполняет GET и декодирует JSON-ответ в out (может быть nil).
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// PostJSON отправляет payload как JSON. payload == nil — пустое тело.
func (c *Client) PostJSON(ctx context.Context, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// Upload отправляет файл multipart-формой, не читая его целиком в память.
func (c *Client) Upload(ctx context.Context, path, field, filename string, src io.Reader, out any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		fw, err := mw.CreateFormFile(field, filename)
		if err == nil {
			_, err = io.Copy(fw, src)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, path, pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

// Download пишет тело ответа в dst и возвращает имя файла из Content-Disposition.
func (c *Client) Download(ctx context.Context, path string, dst io.Writer) (string, int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", 0, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, errorFromBody(resp.StatusCode, body)
	}
	var name string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return name, n, fmt.Errorf("write file: %w", err)
	}
	return name, n, nil
}
