package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"devlaunch/config"
	"devlaunch/logger"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type gcsStore struct {
	log         *logger.Logger
	client      *storage.Client
	buckets     map[Category]string
	signerEmail string
}

// NewGCSStore connects to Cloud Storage with the configured service account
// key, or application default credentials when none is set.
func NewGCSStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ObjectStore, error) {
	serviceLog := log.With("service", "GCSStore")
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if cfg.GCSSignerKeyFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSSignerKeyFile))
	} else {
		serviceLog.Warn("GCS_SIGNER_KEY_FILE not set, relying on application default credentials")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &gcsStore{
		log:    serviceLog,
		client: client,
		buckets: map[Category]string{
			CategoryVideo:       cfg.VideoBucket,
			CategoryThumbnail:   cfg.ThumbnailBucket,
			CategoryCertificate: cfg.CertificateBucket,
		},
		signerEmail: cfg.GCSSignerEmail,
	}, nil
}

func (s *gcsStore) bucket(cat Category) (*storage.BucketHandle, string, error) {
	name, ok := s.buckets[cat]
	if !ok || name == "" {
		return nil, "", fmt.Errorf("no bucket configured for %s", cat)
	}
	return s.client.Bucket(name), name, nil
}

func (s *gcsStore) Upload(ctx context.Context, cat Category, key string, r io.Reader, contentType string) error {
	if err := validKey(key); err != nil {
		return err
	}
	b, _, err := s.bucket(cat)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	w := b.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %s to GCS: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s in GCS: %w", key, err)
	}
	s.log.Debug("Object uploaded", "category", cat, "key", key)
	return nil
}

func (s *gcsStore) Delete(ctx context.Context, cat Category, key string) error {
	b, _, err := s.bucket(cat)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := b.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete GCS object %q: %w", key, err)
	}
	return nil
}

func (s *gcsStore) SignedURL(_ context.Context, cat Category, key string, expiry time.Duration) (string, error) {
	b, _, err := s.bucket(cat)
	if err != nil {
		return "", err
	}
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expiry),
	}
	if s.signerEmail != "" {
		opts.GoogleAccessID = s.signerEmail
	}
	url, err := b.SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", key, err)
	}
	return url, nil
}

func (s *gcsStore) PublicURL(cat Category, key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.buckets[cat], key)
}
