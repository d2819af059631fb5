package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads into <folder>/<dir>. The stored filename keeps the
// extension while the Cloudinary public id drops it.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary, folder string) *CloudinaryStore {
	return &CloudinaryStore{cld: cld, folder: folder}
}

func (s *CloudinaryStore) Save(ctx context.Context, field string, fh *multipart.FileHeader) (string, error) {
	folder, err := s.folderFor(field)
	if err != nil {
		return "", err
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	filename := NewFilename(fh.Filename)
	_, err = s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:    folder,
		PublicID:  publicID(filename),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return filename, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, field, filename string) error {
	folder, err := s.folderFor(field)
	if err != nil {
		return err
	}
	_, err = s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: path.Join(folder, publicID(filename)),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}

func (s *CloudinaryStore) folderFor(field string) (string, error) {
	dir, err := Dir(field)
	if err != nil {
		return "", err
	}
	return path.Join(s.folder, dir), nil
}

func publicID(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename))
}
