package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/chachabrian/tourhub-backend/internal/config"
	"github.com/rs/zerolog/log"
)

const maxImageSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Storage writes tour images to S3, or to a local directory served under /uploads.
type Storage struct {
	useS3     bool
	bucket    string
	region    string
	client    *s3.S3
	uploader  *s3manager.Uploader
	uploadDir string
	baseURL   string
}

// NewStorage selects S3 when fully configured and falls back to local disk.
func NewStorage(cfg config.StorageConfig, baseURL string) (*Storage, error) {
	if cfg.UseS3() {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(cfg.AWSRegion),
			Credentials: credentials.NewStaticCredentials(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}

		log.Info().Str("bucket", cfg.Bucket).Msg("using S3 image storage")
		return &Storage{
			useS3:    true,
			bucket:   cfg.Bucket,
			region:   cfg.AWSRegion,
			client:   s3.New(sess),
			uploader: s3manager.NewUploader(sess),
		}, nil
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	log.Warn().Str("dir", cfg.UploadDir).Msg("S3 not configured, using local image storage")
	return &Storage{
		uploadDir: cfg.UploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *Storage) UsingS3() bool {
	return s.useS3
}

// UploadDir is the local directory to serve when S3 is not in use.
func (s *Storage) UploadDir() string {
	return s.uploadDir
}

// UploadImage stores the file under folder and returns its public URL.
func (s *Storage) UploadImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > maxImageSize {
		return "", invalid("image", "image must be at most %d MB", maxImageSize>>20)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(src, maxImageSize+1)); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	contentType := http.DetectContentType(buf.Bytes())
	if !allowedImageTypes[contentType] {
		return "", invalid("image", "unsupported image type %s", contentType)
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(file.Filename)))
	key := filepath.ToSlash(filepath.Join(folder, name))

	if s.useS3 {
		_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
	}

	dir := filepath.Join(s.uploadDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s", s.baseURL, key), nil
}

// DeleteImage removes an image previously returned by UploadImage.
func (s *Storage) DeleteImage(ctx context.Context, imageURL string) error {
	key, err := s.keyFromURL(imageURL)
	if err != nil {
		return err
	}

	if s.useS3 {
		_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	}

	err = os.Remove(filepath.Join(s.uploadDir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Storage) keyFromURL(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if !s.useS3 {
		key = strings.TrimPrefix(key, "uploads/")
	}
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid image url %q", imageURL)
	}
	return key, nil
}
