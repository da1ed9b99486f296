package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"AidDesk/internal/cli/api"
	"AidDesk/internal/cli/api/apitest"
	"AidDesk/internal/cli/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, srv *apitest.Server, userID, role string) *api.Client {
	t.Helper()
	tok := ""
	if userID != "" {
		tok = srv.Token(t, userID, role)
	}
	return api.NewClient(srv.URL, apitest.NewMemTokens(tok), nil, nil)
}

func TestMe_Anonymous(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, "", "")
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestMe_WithToken(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, "42", "user")
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, model.UserID("42"), u.ID)
	assert.Equal(t, "42", u.StorageKey())
	assert.False(t, u.IsAdmin())
}

func TestMe_NumericIDAnd401(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(`{"user":{"id":7,"role":"admin"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := api.NewClient(ts.URL, nil, nil, nil)
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.UserID("7"), u.ID)
	assert.True(t, u.IsAdmin())

	u, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestProfileStats_TrustSnapshot(t *testing.T) {
	srv := apitest.New(t)
	srv.Set(func(s *apitest.Server) {
		s.Stats = apitest.Response{Status: 200, Body: map[string]any{
			"trust": map[string]any{
				"trustLevel":                    2,
				"limits":                        map[string]any{"min": 100, "max": 1000},
				"effectiveApprovedApplications": 5,
				"approvedApplications":          6,
			},
		}}
	})
	c := newClient(t, srv, "1", "user")
	st, err := c.ProfileStats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Trust)
	assert.Equal(t, 2, st.Trust.TrustLevel)
	assert.Equal(t, &model.Limits{Min: 100, Max: 1000}, st.Trust.Limits)
	require.NotNil(t, st.ApprovedCount)
	assert.Equal(t, 5, *st.ApprovedCount)
}

func TestProfileStats_LegacyShapes(t *testing.T) {
	shapes := []map[string]any{
		{"approvedApplications": 3},
		{"stats": map[string]any{"approvedApplications": 3}},
		{"applications": map[string]any{"approved": 3}},
		{"trust": map[string]any{"approvedApplications": 3}},
	}
	for _, body := range shapes {
		srv := apitest.New(t)
		b := body
		srv.Set(func(s *apitest.Server) { s.Stats = apitest.Response{Status: 200, Body: b} })
		st, err := newClient(t, srv, "1", "user").ProfileStats(context.Background())
		require.NoError(t, err)
		assert.Nil(t, st.Trust, "no trustLevel → no snapshot: %v", body)
		require.NotNil(t, st.ApprovedCount, "%v", body)
		assert.Equal(t, 3, *st.ApprovedCount)
	}
}

func TestProfileStats_NoCount(t *testing.T) {
	srv := apitest.New(t)
	srv.Set(func(s *apitest.Server) { s.Stats = apitest.Response{Status: 200, Body: map[string]any{}} })
	st, err := newClient(t, srv, "1", "user").ProfileStats(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.ApprovedCount)
}

func TestProfileStats_Unauthorized(t *testing.T) {
	srv := apitest.New(t)
	_, err := newClient(t, srv, "", "").ProfileStats(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestReviewStatus(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, "1", "user")

	st, err := c.ReviewStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.HasReview)

	srv.Set(func(s *apitest.Server) {
		s.Reviews = apitest.Response{Status: 200, Body: map[string]any{"viewer": map[string]any{"review": map[string]any{"id": 1}}}}
	})
	st, err = c.ReviewStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.HasReview)

	srv.Set(func(s *apitest.Server) { s.Reviews = apitest.Response{Status: 200, Body: map[string]any{}} })
	st, err = c.ReviewStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.HasReview)
}

func TestUpload_SingleMultipartRequest(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, "1", "user")
	files := []model.PhotoFile{
		&model.MemoryPhoto{FileName: "a.jpg", Data: []byte("aaa")},
		&model.MemoryPhoto{FileName: "b.jpg", Data: []byte("bbbb")},
	}
	urls, err := c.Upload(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, urls)
	assert.Equal(t, 1, srv.Hits("/api/uploads"))
	require.Len(t, srv.Uploads(), 1)
	assert.Equal(t, []apitest.UploadedFile{{Name: "a.jpg", Size: 3}, {Name: "b.jpg", Size: 4}}, srv.Uploads()[0])
}

func TestUpload_ErrorTaxonomy(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, "1", "user")
	files := []model.PhotoFile{&model.MemoryPhoto{FileName: "a.jpg", Data: []byte("a")}}

	// 413 перекрывает любое тело
	srv.Set(func(s *apitest.Server) {
		s.UploadReply = func([]apitest.UploadedFile) apitest.Response {
			return apitest.Response{Status: http.StatusRequestEntityTooLarge, Body: map[string]any{"error": "ignored"}}
		}
	})
	_, err := c.Upload(context.Background(), files)
	require.Error(t, err)
	assert.Equal(t, api.MsgPhotosTooLarge, err.Error())

	// JSON-ошибка сервера показывается как есть
	srv.Set(func(s *apitest.Server) {
		s.UploadReply = func([]apitest.UploadedFile) apitest.Response {
			return apitest.Response{Status: http.StatusBadRequest, Body: map[string]any{"message": "Неверный формат"}}
		}
	})
	_, err = c.Upload(context.Background(), files)
	require.Error(t, err)
	assert.Equal(t, "Неверный формат", err.Error())

	// тело не JSON — общее сообщение
	srv.Set(func(s *apitest.Server) {
		s.UploadReply = func([]apitest.UploadedFile) apitest.Response {
			return apitest.Response{Status: http.StatusBadGateway, Raw: "<html>bad gateway</html>"}
		}
	})
	_, err = c.Upload(context.Background(), files)
	require.Error(t, err)
	assert.Equal(t, api.MsgUploadFailed, err.Error())
}

func TestCreateApplication_StatusClasses(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, "1", "user")
	p := model.ApplicationPayload{SubmissionID: "sub-1", Title: "t", Amount: 500}

	require.NoError(t, c.CreateApplication(context.Background(), p))
	require.Len(t, srv.Applications(), 1)
	assert.Equal(t, "t", srv.Applications()[0]["title"])
	assert.Equal(t, float64(500), srv.Applications()[0]["amount"])
	assert.Equal(t, []string{"sub-1"}, srv.RequestIDs())

	left := int64(3600)
	srv.Set(func(s *apitest.Server) {
		s.CreateReply = func(map[string]any) apitest.Response {
			return apitest.Response{Status: http.StatusTooManyRequests, Body: map[string]any{"error": "limit", "leftMs": left}}
		}
	})
	err := c.CreateApplication(context.Background(), p)
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Status)
	require.NotNil(t, se.Body.LeftMs)
	assert.Equal(t, left, *se.Body.LeftMs)
	assert.Equal(t, "limit", se.Body.Text())

	// без токена — ErrUnauthorized
	anon := newClient(t, srv, "", "")
	assert.ErrorIs(t, anon.CreateApplication(context.Background(), p), api.ErrUnauthorized)
}

func TestCreateApplication_ContextCancelled(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, "1", "user")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.CreateApplication(ctx, model.ApplicationPayload{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, srv.Hits("/api/applications"))
}
