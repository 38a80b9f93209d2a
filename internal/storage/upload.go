package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const MaxImageSize = 5 << 20

var (
	allowedTypes = map[string]bool{"image/jpeg": true, "image/png": true}
	allowedExts  = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	unsafeChars  = regexp.MustCompile(`[^\w\s.-]`)
)

type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadUpload checks type, extension and size of a multipart file and reads it
// under a sanitized, timestamped name.
func ReadUpload(fh *multipart.FileHeader, now time.Time) (*Upload, error) {
	ct := fh.Header.Get("Content-Type")
	if !allowedTypes[ct] {
		return nil, fmt.Errorf("%w: only JPEG and PNG are allowed", ErrInvalidImage)
	}
	if fh.Size > MaxImageSize {
		return nil, fmt.Errorf("%w: file exceeds 5 MB", ErrInvalidImage)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExts[ext] {
		return nil, fmt.Errorf("%w: extension %q is not allowed", ErrInvalidImage, ext)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: file exceeds 5 MB", ErrInvalidImage)
	}

	return &Upload{Name: SanitizeFilename(fh.Filename, now), ContentType: ct, Data: data}, nil
}

const (
	// maxNameLen is the usual file name limit (NAME_MAX) of local filesystems.
	maxNameLen      = 255
	maxExtLen       = 16
	thumbnailPrefix = "thumbnail_"
	thumbnailExt    = ".png"
)

// SanitizeFilename prefixes name with a timestamp and drops anything that is
// not a word character, space, dot or dash. The stem is shortened so that the
// result and its thumbnail name both fit in maxNameLen; the extension is kept.
func SanitizeFilename(name string, now time.Time) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	clean := unsafeChars.ReplaceAllString(name, "")

	ext := filepath.Ext(clean)
	if len(ext) > maxExtLen {
		ext = ""
	}
	stem := strings.TrimSuffix(clean, ext)

	prefix := now.UTC().Format("20060102150405") + "_"
	room := maxNameLen - len(prefix) - max(len(ext), len(thumbnailPrefix)+len(thumbnailExt))
	if len(stem) > room {
		stem = stem[:room]
	}
	return prefix + stem + ext
}

func ThumbnailName(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return thumbnailPrefix + stem + thumbnailExt
}
