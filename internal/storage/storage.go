// Package storage validates uploaded product images and persists them with
// their thumbnails.
package storage

import (
	"context"
	"errors"
)

const (
	ImagesDir     = "images"
	ThumbnailsDir = "thumbnails"
)

var ErrInvalidImage = errors.New("invalid image")

// Store saves one object and returns the path clients use to fetch it.
// Remove of a missing object is not an error.
type Store interface {
	Save(ctx context.Context, dir, name string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, dir, name string) error
}

type Saved struct {
	Image     string
	Thumbnail string

	name string
}

// SaveImage stores the upload and a generated PNG thumbnail.
func SaveImage(ctx context.Context, s Store, u *Upload) (*Saved, error) {
	thumb, err := Thumbnail(u.Data)
	if err != nil {
		return nil, err
	}

	imgPath, err := s.Save(ctx, ImagesDir, u.Name, u.Data, u.ContentType)
	if err != nil {
		return nil, err
	}
	thumbPath, err := s.Save(ctx, ThumbnailsDir, ThumbnailName(u.Name), thumb, "image/png")
	if err != nil {
		return nil, errors.Join(err, s.Remove(ctx, ImagesDir, u.Name))
	}

	return &Saved{Image: imgPath, Thumbnail: thumbPath, name: u.Name}, nil
}

// DiscardImage removes both objects written by SaveImage.
func DiscardImage(ctx context.Context, s Store, saved *Saved) error {
	return errors.Join(
		s.Remove(ctx, ImagesDir, saved.name),
		s.Remove(ctx, ThumbnailsDir, ThumbnailName(saved.name)),
	)
}
