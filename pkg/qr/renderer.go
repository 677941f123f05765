package qr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

const DefaultSize = 300

// ErrImageExists is returned by Render when path is already taken. An existing
// image belongs to another ticket and is never overwritten.
var ErrImageExists = errors.New("qr image already exists")

// Renderer writes the QR image for content to path. Remove discards an image
// whose ticket never committed.
type Renderer interface {
	Render(content, path string) error
	Remove(path string) error
}

// FileRenderer renders PNG files with go-qrcode.
type FileRenderer struct {
	Size  int
	Level qrcode.RecoveryLevel
}

func NewFileRenderer(size int) *FileRenderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &FileRenderer{Size: size, Level: qrcode.Medium}
}

// Render creates the parent directory when missing. The file is created
// exclusively, so a path collision fails with ErrImageExists.
func (r *FileRenderer) Render(content, path string) error {
	png, err := r.PNG(content)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create qr dir %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrImageExists, path)
		}
		return fmt.Errorf("create qr %s: %w", path, err)
	}

	_, err = f.Write(png)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write qr %s: %w", path, err)
	}
	return nil
}

func (r *FileRenderer) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove qr %s: %w", path, err)
	}
	return nil
}

// PNG encodes content in memory, used when embedding the code into documents.
func (r *FileRenderer) PNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, r.Level, r.Size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
