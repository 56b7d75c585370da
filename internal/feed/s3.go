package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Public location of the ISS OEM document.
const (
	DefaultS3Bucket = "nasa-public-data"
	DefaultS3Key    = "iss-coords/current/ISS_OEM/ISS.OEM_J2K_EPH.xml"
	DefaultS3Region = "us-east-1"
)

// GetObjectAPI is the subset of *s3.Client used by S3Provider.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Provider reads the document straight from its bucket.
type S3Provider struct {
	client   GetObjectAPI
	bucket   string
	key      string
	maxBytes int64
}

// NewS3Provider creates an S3Provider for bucket/key.
func NewS3Provider(client GetObjectAPI, bucket, key string, maxBytes int64) *S3Provider {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &S3Provider{
		client:   client,
		bucket:   bucket,
		key:      key,
		maxBytes: maxBytes,
	}
}

// NewAnonymousS3Client builds an S3 client for public buckets: no credentials
// are looked up or sent.
func NewAnonymousS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Fetch downloads the object.
func (p *S3Provider) Fetch(ctx context.Context) ([]byte, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("s3://%s/%s does not exist", p.bucket, p.key)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", p.bucket, p.key, err)
	}
	defer out.Body.Close()

	return readLimited(out.Body, p.maxBytes)
}

// String names the source for logs.
func (p *S3Provider) String() string {
	return "s3://" + p.bucket + "/" + p.key
}
