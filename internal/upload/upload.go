// Package upload validates product images from multipart forms and stores
// them on local disk or in Cloudinary.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Multipart field names accepted on product creation.
const (
	FieldFeatured        = "featuredImage"
	FieldGallery         = "galleryImages"
	FieldVariantFeatured = "variantFeaturedImage"
	FieldVariantGallery  = "variantGalleryImages"
)

const (
	MaxFileSize     = 5 << 20 // 5MB
	MaxFeaturedFile = 1
	MaxGalleryFiles = 10
)

var (
	ErrInvalidFile  = errors.New("invalid file")
	ErrUnknownField = errors.New("unexpected file field")
)

var dirs = map[string]string{
	FieldFeatured:        "featured",
	FieldGallery:         "gallery",
	FieldVariantFeatured: "variants/featured",
	FieldVariantGallery:  "variants/gallery",
}

var allowedExt = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Store persists uploaded files under a directory chosen by field name.
type Store interface {
	Save(ctx context.Context, field string, fh *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, field, filename string) error
}

// Dir returns the storage directory for a field name.
func Dir(field string) (string, error) {
	dir, ok := dirs[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return dir, nil
}

// NewFilename returns a random name that keeps the lower-cased extension.
func NewFilename(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}

// Validate checks extension, sniffed content type and size.
func Validate(fh *multipart.FileHeader) error {
	if fh.Size > MaxFileSize {
		return fmt.Errorf("%w: %s is larger than 5MB", ErrInvalidFile, fh.Filename)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return fmt.Errorf("%w: images only (%s)", ErrInvalidFile, fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	mime, err := sniffMIME(f)
	if err != nil {
		return err
	}
	if !allowedMIME[mime] {
		return fmt.Errorf("%w: images only (%s is %s)", ErrInvalidFile, fh.Filename, mime)
	}
	return nil
}

func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	mime := http.DetectContentType(buf[:n])

	// reset so later reads start from byte 0
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek reset: %w", err)
	}
	return mime, nil
}

var variantField = regexp.MustCompile(`^variants\[(\d+)\]\[(\w+)\]$`)

// ParseVariantField splits "variants[2][variantFeaturedImage]" into its index
// and field name.
func ParseVariantField(name string) (int, string, bool) {
	m := variantField.FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return idx, m[2], true
}
