package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bokangsibolla/sola-images/internal/config"
	"github.com/bokangsibolla/sola-images/internal/domain"
)

// ObjectStore re-hosts winning images in S3-compatible storage and hands
// back publicly addressable URLs.
type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	return nil
}

// PutJPEG uploads JPEG bytes under objectKey (upsert) and returns the
// public URL.
func (s *ObjectStore) PutJPEG(ctx context.Context, objectKey string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectKey, err)
	}
	return s.publicURL(objectKey), nil
}

func (s *ObjectStore) publicURL(objectKey string) string {
	base := strings.TrimSuffix(s.cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimSuffix(s.cfg.Endpoint, "/")
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			base = "https://" + base
		}
		base += "/" + s.cfg.Bucket
	}
	return base + "/" + objectKey
}

// HeroKey is the storage path for a destination's hero image.
func HeroKey(dest domain.Destination) string {
	switch dest.Type {
	case domain.TypeCountry:
		return "countries/" + dest.Slug + ".jpg"
	case domain.TypeCity:
		return "cities/" + dest.Slug + ".jpg"
	default:
		return "areas/" + areaSlug(dest) + ".jpg"
	}
}

// GalleryKey is the storage path for the i-th gallery image.
func GalleryKey(dest domain.Destination, i int) string {
	switch dest.Type {
	case domain.TypeCountry:
		return fmt.Sprintf("countries/%s-gallery-%d.jpg", dest.Slug, i)
	case domain.TypeCity:
		return fmt.Sprintf("cities/%s-gallery-%d.jpg", dest.Slug, i)
	default:
		return fmt.Sprintf("areas/%s-gallery-%d.jpg", areaSlug(dest), i)
	}
}

func areaSlug(dest domain.Destination) string {
	citySlug := dest.CitySlug
	if citySlug == "" {
		citySlug = "unknown"
	}
	return citySlug + "-" + dest.Slug
}
