package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3 client constructors, swappable in tests.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newObjectID = uuid.NewString
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3AvatarConfig locates the bucket avatars are uploaded to.
//
//   - Endpoint: custom S3 endpoint (MinIO); enables path-style addressing.
//   - AccessKey / SecretKey: static credentials; when empty the default AWS
//     credential chain is used.
//   - PublicBaseURL: prefix of the URL stored in the session. Defaults to
//     <Endpoint>/<Bucket> or the virtual-hosted AWS URL.
type S3AvatarConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3AvatarStore uploads avatars and stores their public URL in the session.
type S3AvatarStore struct {
	client putObjectAPI
	cfg    S3AvatarConfig
}

func NewS3AvatarStore(ctx context.Context, cfg S3AvatarConfig) (*S3AvatarStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3AvatarStore{client: client, cfg: cfg}, nil
}

func (s *S3AvatarStore) Store(ctx context.Context, username string, img []byte) (string, error) {
	mime, ext, err := sniffImage(img)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", url.PathEscape(username), newObjectID(), ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img),
		ContentType:   aws.String(mime),
		ContentLength: aws.Int64(int64(len(img))),
	})
	if err != nil {
		return "", fmt.Errorf("avatar upload failed: %w", err)
	}
	return s.publicURL(key), nil
}

func (s *S3AvatarStore) publicURL(key string) string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	case s.cfg.Endpoint != "":
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}
