package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// objectAPI is the subset of the S3 client used for image removal.
type objectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Remover implements Remover for images stored in an S3 bucket.
type s3Remover struct {
	client objectAPI
	bucket string
	logger zerolog.Logger
}

// NewS3Remover creates a new S3-based image remover.
func NewS3Remover(ctx context.Context, bucket, region string, logger zerolog.Logger) (Remover, error) {
	logger = logger.With().Str("component", "s3-remover").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 remover initialised")

	return newS3Remover(s3.NewFromConfig(cfg), bucket, logger), nil
}

func newS3Remover(client objectAPI, bucket string, logger zerolog.Logger) *s3Remover {
	return &s3Remover{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// DeleteFile deletes the object at key. S3 deletes are idempotent, so the
// object is checked with HeadObject first to report whether it existed.
func (r *s3Remover) DeleteFile(ctx context.Context, key string) (bool, error) {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			r.logger.Debug().Str("bucket", r.bucket).Str("key", key).Msg("image object already gone")
			return false, nil
		}
		r.logger.Error().Err(err).Str("bucket", r.bucket).Str("key", key).Msg("failed to head object")
		return false, fmt.Errorf("failed to head object (bucket=%s, key=%s): %w", r.bucket, key, err)
	}

	_, err = r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("bucket", r.bucket).Str("key", key).Msg("failed to delete object")
		return false, fmt.Errorf("failed to delete object (bucket=%s, key=%s): %w", r.bucket, key, err)
	}

	r.logger.Info().Str("bucket", r.bucket).Str("key", key).Msg("image object deleted")
	return true, nil
}
