package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cortexa-labs/cortexa/internal/domain"
)

// textSuffixes are the object key suffixes treated as indexable documents.
var textSuffixes = []string{".txt", ".md"}

// S3ClientConfig holds configuration for S3DocumentSource
type S3ClientConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// S3DocumentSource loads source documents for indexing from an
// S3-compatible bucket (e.g. MinIO, RustFS).
type S3DocumentSource struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3DocumentSource creates a new S3DocumentSource with the given configuration
func NewS3DocumentSource(ctx context.Context, cfg S3ClientConfig, prefix string) (*S3DocumentSource, error) {
	// Create custom resolver for S3-compatible endpoints
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	// Load AWS config
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with path-style addressing for S3-compatible services
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3DocumentSource{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
	}, nil
}

// Load lists text objects under the configured prefix and fetches each one
// as a Document. The object key becomes the document's source identifier.
func (s *S3DocumentSource) Load(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !isTextKey(key) {
				continue
			}
			text, err := s.fetch(ctx, key)
			if err != nil {
				return nil, err
			}
			docs = append(docs, domain.NewDocument(key, text))
		}
	}

	return docs, nil
}

// fetch reads one object body fully, releasing the body on all paths.
func (s *S3DocumentSource) fetch(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return string(data), nil
}

func isTextKey(key string) bool {
	for _, suffix := range textSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}
