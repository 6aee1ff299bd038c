package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

// BucketService uploads derived media assets (screencaps, thumbnails). It is
// a side-path collaborator: content generation never depends on it.
type BucketService interface {
	UploadObject(ctx context.Context, key string, mimeType string, data io.Reader) (UploadedObject, error)
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
}

type UploadedObject struct {
	Key string
	URL string
}

type bucketService struct {
	log        *logger.Logger
	client     *storage.Client
	bucketName string
	cdnDomain  string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	bucketName := strings.TrimSpace(os.Getenv("MEDIA_GCS_BUCKET_NAME"))
	if bucketName == "" {
		return nil, fmt.Errorf("missing env var MEDIA_GCS_BUCKET_NAME")
	}
	cdnDomain := strings.TrimSpace(os.Getenv("MEDIA_CDN_DOMAIN"))

	var opts []option.ClientOption
	if credsPath := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client init: %w", err)
	}

	return &bucketService{
		log:        log.With("service", "BucketService"),
		client:     client,
		bucketName: bucketName,
		cdnDomain:  cdnDomain,
	}, nil
}

func (s *bucketService) UploadObject(ctx context.Context, key string, mimeType string, data io.Reader) (UploadedObject, error) {
	out := UploadedObject{}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return out, fmt.Errorf("object key required")
	}

	w := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	if mimeType != "" {
		w.ContentType = mimeType
	}
	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return out, fmt.Errorf("gcs upload %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return out, fmt.Errorf("gcs upload close %q: %w", key, err)
	}

	out.Key = key
	out.URL = s.PublicURL(key)
	s.log.Debug("uploaded object", "key", key, "mime_type", mimeType)
	return out, nil
}

func (s *bucketService) DeleteObject(ctx context.Context, key string) error {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return nil
	}
	return s.client.Bucket(s.bucketName).Object(key).Delete(ctx)
}

func (s *bucketService) PublicURL(key string) string {
	if s.cdnDomain != "" {
		return "https://" + strings.TrimRight(s.cdnDomain, "/") + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key)
}
