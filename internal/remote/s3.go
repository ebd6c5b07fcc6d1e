package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

type S3Target struct {
	bucket string
	key    string
	client *s3.Client
}

func NewS3Target(ctx context.Context, rawURL, profile string) (*S3Target, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	// Failed requests are fatal to the transfer, so the SDK must not
	// retry behind the engine's back
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %v", err)
	}
	return &S3Target{
		bucket: bucket,
		key:    key,
		client: s3.NewFromConfig(cfg),
	}, nil
}

func (t *S3Target) Length(ctx context.Context) (int64, error) {
	headObj, err := t.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return 0, fmt.Errorf("s3://%s/%s: %w", t.bucket, t.key, ErrNotFound)
		}
		return 0, fmt.Errorf("error accessing S3 object: %v", err)
	}
	size := int64(0)
	if headObj.ContentLength != nil {
		size = *headObj.ContentLength
	}
	log.Debug().Str("op", "remote/s3").Msgf("Resolved length %d for s3://%s/%s", size, t.bucket, t.key)
	return size, nil
}

func (t *S3Target) FetchRange(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	result, err := t.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)),
	})
	if err != nil {
		return nil, fmt.Errorf("error getting object range: %v: %w", err, ErrRangeUnavailable)
	}
	return result.Body, nil
}

// SuggestedName returns the final path element of the object key.
func (t *S3Target) SuggestedName() string {
	parts := strings.Split(t.key, "/")
	return parts[len(parts)-1]
}

func parseS3URL(url string) (string, string, error) {
	url = strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(url, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format, expected s3://BUCKET/KEY")
	}
	return parts[0], parts[1], nil
}
