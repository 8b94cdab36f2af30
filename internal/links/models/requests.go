package models

import (
	"fmt"
	"io"
	"strings"

	dErrors "shortlink/pkg/domain-errors"
	s "shortlink/pkg/string"
	"shortlink/pkg/validation"
)

// CreateLinkRequest holds the text fields of the create form.
type CreateLinkRequest struct {
	ID         string `validate:"required,min=3,max=20,linkid,unreserved"`
	URLMobile  string `validate:"required,max=2048,weburl"`
	URLDesktop string `validate:"omitempty,max=2048,weburl"`
}

func (r *CreateLinkRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.ID, &r.URLMobile, &r.URLDesktop)
}

func (r *CreateLinkRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// AllowedImageTypes maps accepted content types to the extension used when
// no usable one comes with the file name.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ImageUpload is the image part of the create form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Validate checks presence, size and declared content type.
func (u *ImageUpload) Validate(maxBytes int64) error {
	if u == nil || u.Content == nil {
		return dErrors.New(dErrors.CodeValidation, "image is required")
	}
	if u.Size <= 0 {
		return dErrors.New(dErrors.CodeValidation, "image is empty")
	}
	if u.Size > maxBytes {
		return ImageTooLarge(maxBytes)
	}
	if _, ok := AllowedImageTypes[strings.ToLower(u.ContentType)]; !ok {
		return dErrors.New(dErrors.CodeValidation, "image must be a jpeg, png or gif")
	}
	return nil
}

// ImageTooLarge is the validation error for an image over maxBytes.
func ImageTooLarge(maxBytes int64) error {
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("image must be %s or smaller", formatSize(maxBytes)))
}

func formatSize(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
	)
	switch {
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n >= kb && n%kb == 0:
		return fmt.Sprintf("%dKB", n/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
