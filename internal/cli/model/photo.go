package model

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// PhotoFile — исходный файл фотографии.
type PhotoFile interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// Photo — фото в форме: файл и адрес превью.
type Photo struct {
	File       PhotoFile
	PreviewURL string
}

// LocalPhoto — файл фотографии на диске.
type LocalPhoto struct {
	path string
	size int64
}

// NewLocalPhoto проверяет, что путь указывает на обычный файл, и запоминает его размер.
func NewLocalPhoto(path string) (*LocalPhoto, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, &os.PathError{Op: "photo", Path: path, Err: os.ErrInvalid}
	}
	return &LocalPhoto{path: path, size: st.Size()}, nil
}

func (p *LocalPhoto) Name() string                 { return filepath.Base(p.path) }
func (p *LocalPhoto) Size() int64                  { return p.size }
func (p *LocalPhoto) Open() (io.ReadCloser, error) { return os.Open(p.path) }

// Path возвращает путь к файлу.
func (p *LocalPhoto) Path() string { return p.path }

// MemoryPhoto — фото, содержимое которого уже в памяти.
type MemoryPhoto struct {
	FileName string
	Data     []byte
}

func (p *MemoryPhoto) Name() string { return p.FileName }
func (p *MemoryPhoto) Size() int64  { return int64(len(p.Data)) }
func (p *MemoryPhoto) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(p.Data)), nil
}
