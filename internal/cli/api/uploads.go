package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"AidDesk/internal/cli/model"
)

// Сообщения об ошибках загрузки показываются пользователю как есть.
const (
	MsgPhotosTooLarge = "Фотографии слишком большие. Уменьшите размер и попробуйте снова"
	MsgUploadFailed   = "Не удалось загрузить фотографии"
)

// Upload отправляет все файлы одним multipart-запросом (поле files)
// и возвращает адреса в порядке ответа сервера. 401 → ErrUnauthorized.
func (c *Client) Upload(ctx context.Context, files []model.PhotoFile) ([]string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name())
		if err != nil {
			return nil, err
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name(), err)
		}
		_, err = io.Copy(part, rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name(), err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	h := http.Header{"Content-Type": {mw.FormDataContentType()}}
	resp, body, err := c.do(ctx, http.MethodPost, "/api/uploads", &buf, h)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", MsgUploadFailed, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		return nil, errors.New(MsgPhotosTooLarge)
	}
	if !isSuccess(resp.StatusCode) {
		se := statusError(resp.StatusCode, body)
		if se.JSON && se.Body.Text() != "" {
			return nil, errors.New(se.Body.Text())
		}
		return nil, errors.New(MsgUploadFailed)
	}

	var out struct {
		Files []struct {
			URL string `json:"url"`
		} `json:"files"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.New(MsgUploadFailed)
	}
	urls := make([]string, 0, len(out.Files))
	for _, f := range out.Files {
		urls = append(urls, f.URL)
	}
	return urls, nil
}
