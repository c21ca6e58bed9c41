package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source reads and writes seed dataset bytes at one location, either a
// local file path or an s3://bucket/key object.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	// Sibling returns a Source for a file next to this one, used for the
	// metadata document.
	Sibling(name string) Source
	// Location describes the source for logs.
	Location() string
}

// Open picks a Source implementation from the location's scheme.
func Open(ctx context.Context, location string) (Source, error) {
	if strings.HasPrefix(location, "s3://") {
		return openS3Source(ctx, location)
	}
	return &fileSource{path: location}, nil
}

// fileSource is a local-filesystem Source.
type fileSource struct {
	path string
}

func (s *fileSource) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return data, nil
}

func (s *fileSource) Write(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create seed directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}
	return nil
}

func (s *fileSource) Sibling(name string) Source {
	return &fileSource{path: filepath.Join(filepath.Dir(s.path), name)}
}

func (s *fileSource) Location() string {
	return s.path
}

// s3Source is an S3-object Source. Region and credentials come from the
// environment; WIMY_S3_ENDPOINT, WIMY_S3_ACCESS_KEY and WIMY_S3_SECRET_KEY
// override them for S3-compatible providers.
type s3Source struct {
	client *s3.Client
	bucket string
	key    string
}

func openS3Source(ctx context.Context, location string) (*s3Source, error) {
	trimmed := strings.TrimPrefix(location, "s3://")
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 location: %s", location)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if accessKey := os.Getenv("WIMY_S3_ACCESS_KEY"); accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, os.Getenv("WIMY_S3_SECRET_KEY"), ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := os.Getenv("WIMY_S3_ENDPOINT"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Source{client: client, bucket: bucket, key: key}, nil
}

func (s *s3Source) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get seed object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed object: %w", err)
	}
	return data, nil
}

func (s *s3Source) Write(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put seed object: %w", err)
	}
	return nil
}

func (s *s3Source) Sibling(name string) Source {
	dir := ""
	if i := strings.LastIndex(s.key, "/"); i >= 0 {
		dir = s.key[:i+1]
	}
	return &s3Source{client: s.client, bucket: s.bucket, key: dir + name}
}

func (s *s3Source) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}
