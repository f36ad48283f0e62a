package objstore

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/deltakit/deltakit/internal/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// s3Backend implements Backend over S3-compatible storage via minio-go,
// the same client the teacher repo's go.mod carries for its MinIO storage
// engine (server/storage/minio).
type s3Backend struct {
	client *minio.Client
	bucket string
}

func newS3Backend(ctx context.Context, uri ParsedURI, opts Options) (*s3Backend, error) {
	region := opts.AWSRegion
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	profile := opts.AWSProfile
	if profile == "" {
		profile = os.Getenv("AWS_PROFILE")
	}

	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{Profile: profile},
		&credentials.IAM{Client: &http.Client{}},
	})

	client, err := minio.New("s3.amazonaws.com", &minio.Options{
		Creds:  creds,
		Secure: true,
		Region: region,
	})
	if err != nil {
		return nil, errors.New(ErrConfigError, "failed to construct S3 client", err)
	}

	return &s3Backend{client: client, bucket: uri.Bucket}, nil
}

func (s *s3Backend) Kind() string { return "s3" }

func (s *s3Backend) ListPrefix(ctx context.Context, prefix string, fn func(ObjectMeta) error) error {
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return classifyS3Err(obj.Err, obj.Key)
		}
		if err := fn(ObjectMeta{Path: obj.Key, Size: obj.Size}); err != nil {
			return err
		}
	}
	return nil
}

func (s *s3Backend) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	getOpts := minio.GetObjectOptions{}
	if err := getOpts.SetRange(offset, offset+length-1); err != nil {
		return nil, errors.New(ErrMalformed, "invalid byte range", err).AddContext("key", key)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, getOpts)
	if err != nil {
		return nil, classifyS3Err(err, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classifyS3Err(err, key)
	}
	return data, nil
}

func (s *s3Backend) GetAll(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyS3Err(err, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classifyS3Err(err, key)
	}
	return data, nil
}

func (s *s3Backend) Head(ctx context.Context, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, classifyS3Err(err, key)
	}
	return info.Size, nil
}

func (s *s3Backend) Close() error { return nil }

func classifyS3Err(err error, key string) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return errors.New(ErrNotFound, "object not found", err).AddContext("key", key)
	case "AccessDenied":
		return errors.New(ErrForbidden, "access denied", err).AddContext("key", key)
	case "SlowDown", "ServiceUnavailable", "RequestTimeout", "InternalError":
		return errors.New(ErrNetwork, "transient S3 error", err).AddContext("key", key).AddContext("code", resp.Code)
	}
	if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "connection") {
		return errors.New(ErrNetwork, "transient S3 network error", err).AddContext("key", key)
	}
	return errors.New(ErrMalformed, "S3 request failed", err).AddContext("key", key)
}
