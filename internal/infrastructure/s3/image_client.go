package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/liljarn/gandalf/internal/domain/client"
)

// Config holds the S3-compatible storage settings. Endpoint is the public
// base URL of the storage service, e.g. https://storage.yandexcloud.net.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// ImageClient uploads profile images to an S3-compatible bucket with
// public-read visibility and resolves their durable URLs.
type ImageClient struct {
	api      *awss3.Client
	bucket   string
	endpoint string
}

func NewImageClient(ctx context.Context, cfg Config) (*ImageClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	api := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	})

	return &ImageClient{
		api:      api,
		bucket:   cfg.Bucket,
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
	}, nil
}

// Upload writes the object under name and returns its durable URL. The URL
// is computed, not read back from storage. Failures are wrapped in
// client.ErrStorageUnavailable and propagated without retrying.
func (c *ImageClient) Upload(ctx context.Context, r io.Reader, name, contentType string) (string, error) {
	_, err := c.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(name),
		ACL:         types.ObjectCannedACLPublicRead,
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s/%s: %v", client.ErrStorageUnavailable, c.bucket, name, err)
	}
	return c.URL(name), nil
}

// URL builds the public address of an object from bucket and name alone.
func (c *ImageClient) URL(name string) string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, name)
}

var _ client.ImageClient = (*ImageClient)(nil)
