// Package upload проверяет размеры фотографий и загружает их одним запросом.
package upload

import (
	"context"
	"errors"
	"fmt"

	"AidDesk/internal/cli/model"
	"AidDesk/internal/metrics"
)

const (
	MaxFileSize  int64 = 5 << 20
	MaxTotalSize int64 = 10 << 20
)

// ErrTotalTooLarge — суммарный размер фото больше MaxTotalSize.
var ErrTotalTooLarge = errors.New("Общий размер фотографий больше 10 МБ")

// Transport отправляет файлы на сервер и возвращает их адреса.
type Transport interface {
	Upload(ctx context.Context, files []model.PhotoFile) ([]string, error)
}

// Uploader — загрузчик фотографий формы.
type Uploader struct {
	transport Transport
	metrics   *metrics.Metrics
}

// New создаёт загрузчик. m может быть nil.
func New(t Transport, m *metrics.Metrics) *Uploader {
	return &Uploader{transport: t, metrics: m}
}

// Upload проверяет ограничения и загружает фото. Порядок адресов совпадает с ответом сервера.
func (u *Uploader) Upload(ctx context.Context, photos []model.Photo) ([]string, error) {
	if len(photos) == 0 {
		return []string{}, nil
	}
	files := make([]model.PhotoFile, 0, len(photos))
	var total int64
	for _, p := range photos {
		if p.File == nil {
			continue
		}
		if p.File.Size() > MaxFileSize {
			u.metrics.Rejected("file_too_large")
			return nil, fmt.Errorf("Файл «%s» больше 5 МБ", p.File.Name())
		}
		total += p.File.Size()
		files = append(files, p.File)
	}
	if total > MaxTotalSize {
		u.metrics.Rejected("total_too_large")
		return nil, ErrTotalTooLarge
	}
	if len(files) == 0 {
		return []string{}, nil
	}

	urls, err := u.transport.Upload(ctx, files)
	if err != nil {
		return nil, err
	}
	u.metrics.Uploaded(total)
	return urls, nil
}
