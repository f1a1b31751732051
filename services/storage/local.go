package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"devlaunch/logger"

	"github.com/golang-jwt/jwt/v4"
)

// LocalStore keeps objects under a directory, one subdirectory per category.
// Signed URLs point at the /files route and carry a short-lived JWT.
type LocalStore struct {
	log     *logger.Logger
	root    string
	baseURL string
	secret  []byte
}

type fileClaims struct {
	Category Category `json:"cat"`
	Key      string   `json:"key"`
	jwt.RegisteredClaims
}

func NewLocalStore(root, baseURL, secret string, log *logger.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{
		log:     log.With("service", "LocalStore"),
		root:    root,
		baseURL: baseURL,
		secret:  []byte(secret),
	}, nil
}

// Path returns the file backing cat/key.
func (s *LocalStore) Path(cat Category, key string) (string, error) {
	if !cat.Valid() {
		return "", fmt.Errorf("unknown category %q", cat)
	}
	if err := validKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, string(cat), filepath.FromSlash(key)), nil
}

func (s *LocalStore) Upload(_ context.Context, cat Category, key string, r io.Reader, _ string) error {
	p, err := s.Path(cat, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return f.Close()
}

func (s *LocalStore) Delete(_ context.Context, cat Category, key string) error {
	p, err := s.Path(cat, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}

func (s *LocalStore) SignedURL(_ context.Context, cat Category, key string, expiry time.Duration) (string, error) {
	p, err := s.Path(cat, key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrObjectNotFound
		}
		return "", err
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, fileClaims{
		Category: cat,
		Key:      key,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/files/%s/%s?token=%s", s.baseURL, cat, key, url.QueryEscape(token)), nil
}

func (s *LocalStore) PublicURL(cat Category, key string) string {
	return fmt.Sprintf("%s/files/%s/%s", s.baseURL, cat, key)
}

// Verify checks a token issued by SignedURL for cat/key.
func (s *LocalStore) Verify(token string, cat Category, key string) error {
	claims := &fileClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return err
	}
	if claims.Category != cat || claims.Key != key {
		return errors.New("token does not match object")
	}
	return nil
}
