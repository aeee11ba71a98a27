// Package s3x provides the S3 client used by sink/retention's archival
// tier: files that age out of local retention are uploaded here instead
// of being deleted outright, when a LogConfig opts into archival.
//
//	w, _ := connect.ParseWiring(ctx)
//	up, err := s3x.NewUploader(ctx, w.Egress("archive"))
package s3x

import (
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/matgreaves/evtrace/connect"
)

// Uploader uploads rotated log files to a single S3 bucket.
type Uploader struct {
	client *s3.Client
	bucket string
}

// NewUploader builds an Uploader from a resolved endpoint. Region is read
// from AWS_REGION; the endpoint's Attributes must set S3_BUCKET.
func NewUploader(ctx context.Context, ep connect.Endpoint) (*Uploader, error) {
	bucket, ok := connect.S3Bucket.Get(ep)
	if !ok || bucket == "" {
		return nil, fmt.Errorf("s3x: endpoint missing S3_BUCKET attribute")
	}
	region, _ := connect.AWSRegion.Get(ep)

	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3x: load aws config: %w", err)
	}
	return &Uploader{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Upload streams body to key under the configured bucket.
func (u *Uploader) Upload(ctx context.Context, key string, body io.Reader) error {
	uploader := manager.NewUploader(u.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &u.bucket,
		Key:    &key,
		Body:   body,
	})
	return err
}
