// utils/valid.go
package utils

import (
	"errors"
	"path/filepath"
	"strings"
)

// MaxImageSize is the upload limit for profile pictures (5MB)
const MaxImageSize = 5 * 1024 * 1024

var (
	ErrImageTooLarge   = errors.New("File too large. Maximum size is 5MB")
	ErrImageTypeDenied = errors.New("Only image files (jpg, jpeg, png, gif) are allowed")
)

// Allowed image extensions
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ValidateImageFile checks size and extension of an uploaded image
func ValidateImageFile(filename string, size int64) error {
	if size > MaxImageSize {
		return ErrImageTooLarge
	}
	if !allowedImageExts[ImageExt(filename)] {
		return ErrImageTypeDenied
	}
	return nil
}

// ImageExt returns the lowercased extension including the dot
func ImageExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
