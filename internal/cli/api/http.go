package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"AidDesk/internal/cli/repo"

	"go.uber.org/zap"
)

// AuthCookie — имя cookie с токеном авторизации.
const AuthCookie = "auth_token"

// ErrUnauthorized — сервер ответил 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrorBody — тело ответа сервера с ошибкой. Поля заполняются по мере наличия.
type ErrorBody struct {
	Error            string `json:"error,omitempty"`
	Message          string `json:"message,omitempty"`
	RequiresReview   bool   `json:"requiresReview,omitempty"`
	RequiresActivity bool   `json:"requiresActivity,omitempty"`
	ActivityType     string `json:"activityType,omitempty"`
	LeftMs           *int64 `json:"leftMs,omitempty"`
}

// Text возвращает текст ошибки сервера: error, затем message.
func (b ErrorBody) Text() string {
	if s := strings.TrimSpace(b.Error); s != "" {
		return s
	}
	return strings.TrimSpace(b.Message)
}

// StatusError — неуспешный (не 2xx) ответ сервера.
type StatusError struct {
	Status int
	Body   ErrorBody
	// JSON сообщает, удалось ли разобрать тело как JSON.
	JSON bool
}

func (e *StatusError) Error() string {
	if t := e.Body.Text(); t != "" {
		return fmt.Sprintf("server returned status %d: %s", e.Status, t)
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// Client — HTTP-клиент API площадки. Токен берётся из TokenStore
// и передаётся cookie auth_token.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  repo.TokenStore
	log     *zap.SugaredLogger
}

// NewClient создаёт клиента. httpClient может быть nil — тогда http.DefaultClient.
func NewClient(baseURL string, tokens repo.TokenStore, httpClient *http.Client, log *zap.SugaredLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		log:     log,
	}
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	tok, err := c.tokens.Load()
	if err != nil {
		return ""
	}
	return tok
}

// do выполняет запрос и полностью читает тело ответа.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if tok := c.token(); tok != "" {
		req.AddCookie(&http.Cookie{Name: AuthCookie, Value: tok})
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	c.log.Debugw("api request", "method", method, "path", path, "status", resp.StatusCode)
	return resp, b, nil
}

// getJSON выполняет GET и декодирует успешный ответ в out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, body, err := c.do(ctx, http.MethodGet, path, nil, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if !isSuccess(resp.StatusCode) {
		return statusError(resp.StatusCode, body)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// postJSON отправляет JSON. Заголовок X-Request-ID передаётся, если requestID не пуст.
func (c *Client) postJSON(ctx context.Context, path string, payload any, requestID string) (*http.Response, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	h := http.Header{"Content-Type": {"application/json"}}
	if requestID != "" {
		h.Set("X-Request-ID", requestID)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(b), h)
}

func isSuccess(code int) bool { return code >= 200 && code < 300 }

func statusError(code int, body []byte) *StatusError {
	se := &StatusError{Status: code}
	if err := json.Unmarshal(body, &se.Body); err == nil {
		se.JSON = true
	}
	return se
}
