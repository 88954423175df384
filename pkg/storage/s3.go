package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	configs "github.com/clipstream/accounts/config"
	"github.com/clipstream/accounts/pkg/logger"
)

// S3Uploader pushes staged local files into an S3-compatible bucket (AWS S3
// or MinIO) and returns a durable public URL.
type S3Uploader struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3Uploader(cfg configs.StorageConfig) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBaseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBaseURL == "" {
		if cfg.Endpoint != "" {
			publicBaseURL = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

// objectKey spreads uploads by date and randomizes the name, keeping the
// original extension so content type stays derivable.
func objectKey(localPath string) string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), filepath.Ext(localPath))
}

// Upload stores the file under a fresh object key and returns its public
// URL. The staged local file is removed best effort after the attempt,
// whether it succeeded or not.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			logger.WarnWithContext(ctx, "Failed to remove staged upload file").
				String("path", localPath).
				Err(err).
				Log()
		}
	}()

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open staged file: %w", err)
	}
	defer file.Close()

	key := objectKey(localPath)
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	start := time.Now()
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Media upload failed").
			String("bucket", u.bucket).
			String("key", key).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return "", fmt.Errorf("failed to upload media: %w", err)
	}

	url := fmt.Sprintf("%s/%s", u.publicBaseURL, key)

	logger.InfoWithContext(ctx, "Media uploaded").
		String("bucket", u.bucket).
		String("key", key).
		Duration(time.Since(start)).
		Log()

	return url, nil
}
