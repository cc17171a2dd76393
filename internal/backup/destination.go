// Package backup snapshots the history store and ships the snapshot to a
// filesystem directory or an S3 bucket, optionally age-encrypted.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"winrecent/internal/config"
)

// Destination receives finished backup files.
type Destination interface {
	// Put stores the content under name and returns where it ended up.
	Put(ctx context.Context, name string, r io.Reader) (string, error)
}

// FileDestination writes backups into a local directory.
type FileDestination struct {
	dir string
}

// NewFileDestination creates a destination rooted at dir. The directory is
// created on first Put.
func NewFileDestination(dir string) *FileDestination {
	return &FileDestination{dir: dir}
}

// Put writes the backup through a temp file and renames it into place.
func (d *FileDestination) Put(_ context.Context, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.dir, ".backup-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing backup: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("syncing backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing backup: %w", err)
	}

	dest := filepath.Join(d.dir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("renaming backup into place: %w", err)
	}
	success = true
	return dest, nil
}

// Uploader is the subset of manager.Uploader used by S3Destination.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Destination uploads backups to a bucket under a key prefix.
type S3Destination struct {
	uploader Uploader
	bucket   string
	prefix   string
}

// NewS3Destination creates a destination using the given uploader.
func NewS3Destination(uploader Uploader, bucket, prefix string) *S3Destination {
	return &S3Destination{uploader: uploader, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// NewS3DestinationFromConfig loads AWS configuration for the backup's region,
// using static credentials when both keys are configured and the default
// credential chain otherwise.
func NewS3DestinationFromConfig(ctx context.Context, cfg config.BackupConfig) (*S3Destination, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return NewS3Destination(manager.NewUploader(client), cfg.S3Bucket, cfg.S3Prefix), nil
}

// Key returns the object key used for name.
func (d *S3Destination) Key(name string) string {
	if d.prefix == "" {
		return name
	}
	return path.Join(d.prefix, name)
}

// Put uploads the backup and returns its s3:// location.
func (d *S3Destination) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	key := d.Key(name)
	_, err := d.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("uploading to s3://%s/%s: %w", d.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", d.bucket, key), nil
}

// NewDestinationFromConfig creates the Destination named by cfg.Type.
func NewDestinationFromConfig(ctx context.Context, cfg config.BackupConfig) (Destination, error) {
	switch cfg.Type {
	case "filesystem", "":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem backup requires dir to be set")
		}
		return NewFileDestination(cfg.Dir), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 backup requires s3_bucket to be set")
		}
		return NewS3DestinationFromConfig(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown backup type: %s", cfg.Type)
	}
}

// Compile-time checks
var (
	_ Destination = (*FileDestination)(nil)
	_ Destination = (*S3Destination)(nil)
	_ Uploader    = (*manager.Uploader)(nil)
)
