package upload

import (
	"fmt"
	"mime/multipart"
	"sort"
)

// VariantFiles are the images sent for one variant.
type VariantFiles struct {
	Featured []*multipart.FileHeader
	Gallery  []*multipart.FileHeader
}

// Files groups the images of one product form by destination.
type Files struct {
	Featured []*multipart.FileHeader
	Gallery  []*multipart.FileHeader
	Variants map[int]VariantFiles
}

// Group sorts multipart files into product and variant slots, enforcing the
// per-field count limits and validating every file.
func Group(form map[string][]*multipart.FileHeader) (*Files, error) {
	files := &Files{Variants: map[int]VariantFiles{}}

	names := make([]string, 0, len(form))
	for name := range form {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fhs := form[name]
		switch name {
		case FieldFeatured:
			files.Featured = fhs
		case FieldGallery:
			files.Gallery = fhs
		default:
			idx, field, ok := ParseVariantField(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
			}
			vf := files.Variants[idx]
			switch field {
			case FieldVariantFeatured:
				vf.Featured = fhs
			case FieldVariantGallery:
				vf.Gallery = fhs
			default:
				return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
			}
			files.Variants[idx] = vf
		}
	}

	if err := checkCount(FieldFeatured, files.Featured, MaxFeaturedFile); err != nil {
		return nil, err
	}
	if err := checkCount(FieldGallery, files.Gallery, MaxGalleryFiles); err != nil {
		return nil, err
	}
	for _, vf := range files.Variants {
		if err := checkCount(FieldVariantFeatured, vf.Featured, MaxFeaturedFile); err != nil {
			return nil, err
		}
		if err := checkCount(FieldVariantGallery, vf.Gallery, MaxGalleryFiles); err != nil {
			return nil, err
		}
	}

	for _, fhs := range form {
		for _, fh := range fhs {
			if err := Validate(fh); err != nil {
				return nil, err
			}
		}
	}
	return files, nil
}

func checkCount(field string, fhs []*multipart.FileHeader, max int) error {
	if len(fhs) > max {
		return fmt.Errorf("%w: %s accepts at most %d files", ErrInvalidFile, field, max)
	}
	return nil
}
