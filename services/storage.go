package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/civic-india/api-go/config"
	"github.com/google/uuid"
)

// PhotoStore persists uploaded report photos and returns a URL that can be
// served back to clients.
type PhotoStore interface {
	Save(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// NewPhotoStore picks the backend from configuration: local disk by default,
// an S3-compatible bucket when UPLOAD_BACKEND=r2.
func NewPhotoStore() (PhotoStore, error) {
	cfg := config.GetUploadConfig()
	if cfg.Backend == "r2" {
		return NewR2Store(config.GetR2Config()), nil
	}
	return NewLocalStore(cfg.UploadDir, cfg.PublicURL)
}

// StorageKey builds a collision-free object key from the original filename.
func StorageKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
}

type LocalStore struct {
	Dir       string
	PublicURL string
}

func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, PublicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *LocalStore) Save(_ context.Context, filename, _ string, data []byte) (string, error) {
	key := StorageKey(filename)
	path := filepath.Join(s.Dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	return s.PublicURL + "/" + key, nil
}

type R2Store struct {
	Client *s3.Client
	Config *config.R2Config
}

func NewR2Store(r2Config *config.R2Config) *R2Store {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2Config.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			r2Config.AccessKeyID,
			r2Config.SecretAccessKey,
			"",
		),
		Region: r2Config.Region,
	})

	return &R2Store{Client: client, Config: r2Config}
}

func (s *R2Store) Save(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := "reports/" + StorageKey(filename)

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(s.Config.PublicURL, "/"), key), nil
}
