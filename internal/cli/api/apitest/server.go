// Package apitest поднимает фейковый бэкенд площадки для тестов клиента:
// те же маршруты, cookie auth_token с HS256 JWT и настраиваемые ответы.
package apitest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

// Viewer — пользователь, извлечённый из токена.
type Viewer struct {
	ID   string
	Role string
}

// UploadedFile — файл, принятый /api/uploads.
type UploadedFile struct {
	Name string
	Size int
}

// Response — статус и JSON-тело ответа. Body == nil означает пустое тело.
type Response struct {
	Status int
	Body   any
	Raw    string // если задано, пишется вместо Body без Content-Type JSON
}

// Server — фейковый API. Поля-ответы можно менять между вызовами.
type Server struct {
	*httptest.Server
	secret []byte

	mu           sync.Mutex
	Stats        Response
	Reviews      Response
	UploadReply  func(files []UploadedFile) Response
	CreateReply  func(body map[string]any) Response
	hits         map[string]int
	uploads      [][]UploadedFile
	applications []map[string]any
	requestIDs   []string
}

// New запускает сервер и закрывает его по окончании теста.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		secret:  []byte("apitest-secret"),
		Stats:   Response{Status: http.StatusOK, Body: map[string]any{"approvedApplications": 0}},
		Reviews: Response{Status: http.StatusOK, Body: map[string]any{"viewer": map[string]any{"review": nil}}},
		UploadReply: func(files []UploadedFile) Response {
			out := make([]map[string]string, 0, len(files))
			for _, f := range files {
				out = append(out, map[string]string{"url": "https://cdn.test/" + f.Name})
			}
			return Response{Status: http.StatusOK, Body: map[string]any{"files": out}}
		},
		CreateReply: func(map[string]any) Response {
			return Response{Status: http.StatusCreated, Body: map[string]any{"item": map[string]any{"id": "app-1"}}}
		},
		hits: map[string]int{},
	}

	r := chi.NewRouter()
	r.Use(s.count)
	r.Use(s.withAuth)
	r.Get("/api/profile/me", s.me)
	r.Group(func(r chi.Router) {
		r.Use(requireViewer)
		r.Get("/api/profile/stats", s.reply(func() Response { return s.Stats }))
		r.Get("/api/reviews", s.reply(func() Response { return s.Reviews }))
		r.Post("/api/uploads", s.upload)
		r.Post("/api/applications", s.create)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Token выпускает подписанный токен для пользователя.
func (s *Server) Token(t testing.TB, userID, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// Hits — сколько раз вызывался путь.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Uploads — принятые пачки файлов.
func (s *Server) Uploads() [][]UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]UploadedFile(nil), s.uploads...)
}

// Applications — принятые тела POST /api/applications.
func (s *Server) Applications() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.applications...)
}

// RequestIDs — значения X-Request-ID у POST /api/applications.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// Set меняет конфигурацию сервера под мьютексом.
func (s *Server) Set(fn func(s *Server)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// withAuth кладёт Viewer в контекст, если cookie содержит валидный токен.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("auth_token")
		if err == nil && c.Value != "" {
			tok, err := jwt.Parse(c.Value, func(*jwt.Token) (any, error) { return s.secret, nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err == nil && tok.Valid {
				if claims, ok := tok.Claims.(jwt.MapClaims); ok {
					sub, _ := claims.GetSubject()
					role, _ := claims["role"].(string)
					if sub != "" {
						r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, Viewer{ID: sub, Role: role}))
					}
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func viewerFrom(ctx context.Context) (Viewer, bool) {
	v, ok := ctx.Value(ctxKey{}).(Viewer)
	return v, ok
}

func requireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := viewerFrom(r.Context()); !ok {
			writeJSON(w, Response{Status: http.StatusUnauthorized, Body: map[string]any{"error": "Требуется вход"}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	v, ok := viewerFrom(r.Context())
	if !ok {
		writeJSON(w, Response{Status: http.StatusOK, Body: map[string]any{}})
		return
	}
	writeJSON(w, Response{Status: http.StatusOK, Body: map[string]any{
		"user": map[string]any{"id": v.ID, "role": v.Role},
	}})
}

func (s *Server) reply(get func() Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		resp := get()
		s.mu.Unlock()
		writeJSON(w, resp)
	}
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, Response{Status: http.StatusBadRequest, Body: map[string]any{"error": err.Error()}})
		return
	}
	var files []UploadedFile
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			continue
		}
		b, _ := io.ReadAll(f)
		_ = f.Close()
		files = append(files, UploadedFile{Name: fh.Filename, Size: len(b)})
	}
	s.mu.Lock()
	s.uploads = append(s.uploads, files)
	reply := s.UploadReply
	s.mu.Unlock()
	writeJSON(w, reply(files))
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, Response{Status: http.StatusBadRequest, Body: map[string]any{"error": "bad json"}})
		return
	}
	s.mu.Lock()
	s.applications = append(s.applications, body)
	s.requestIDs = append(s.requestIDs, r.Header.Get("X-Request-ID"))
	reply := s.CreateReply
	s.mu.Unlock()
	writeJSON(w, reply(body))
}

func writeJSON(w http.ResponseWriter, resp Response) {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	if resp.Raw != "" {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp.Raw))
		return
	}
	if resp.Body == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp.Body)
}
