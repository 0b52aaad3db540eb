package config

import "os"

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
}

func GetR2Config() *R2Config {
	return &R2Config{
		AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("CLOUDFLARE_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("CLOUDFLARE_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("CLOUDFLARE_BUCKET_NAME"),
		PublicURL:       os.Getenv("CLOUDFLARE_PUBLIC_URL"),
		Region:          "auto",
	}
}

type UploadConfig struct {
	// Backend is "local" or "r2". Local disk is the default.
	Backend   string
	UploadDir string
	PublicURL string
}

func GetUploadConfig() *UploadConfig {
	backend := os.Getenv("UPLOAD_BACKEND")
	if backend == "" {
		backend = "local"
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "public/uploads"
	}

	publicURL := os.Getenv("UPLOAD_PUBLIC_URL")
	if publicURL == "" {
		publicURL = "/uploads"
	}

	return &UploadConfig{
		Backend:   backend,
		UploadDir: uploadDir,
		PublicURL: publicURL,
	}
}
