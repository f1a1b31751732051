// Package storage keeps course videos, thumbnails and certificates in object
// storage and hands out time-limited URLs for them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryVideo       Category = "video"
	CategoryThumbnail   Category = "thumbnail"
	CategoryCertificate Category = "certificate"
)

const (
	VideoURLExpiry       = 4 * time.Hour
	CertificateURLExpiry = time.Hour
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectStore interface {
	Upload(ctx context.Context, cat Category, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, cat Category, key string) error
	SignedURL(ctx context.Context, cat Category, key string, expiry time.Duration) (string, error)
	PublicURL(cat Category, key string) string
}

func (c Category) Valid() bool {
	switch c {
	case CategoryVideo, CategoryThumbnail, CategoryCertificate:
		return true
	}
	return false
}

// NewObjectKey builds "<prefix>/<uuid>-<name>" from an uploaded file name.
func NewObjectKey(prefix, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	return fmt.Sprintf("%s/%s-%s", strings.Trim(prefix, "/"), uuid.NewString(), name)
}

// CertificateKey is where a rendered certificate for userID/courseID lives.
func CertificateKey(userID, courseID uint) string {
	return fmt.Sprintf("certificates/%d/%d_%s.png", userID, courseID, uuid.NewString())
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
