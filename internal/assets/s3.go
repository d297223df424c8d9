package assets

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// maxImageBytes bounds decoded upload size; larger payloads are rejected
// before touching the network.
const maxImageBytes = 10 << 20

// S3Store uploads images to an S3 bucket and returns the object's public URL.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
	prefix string
}

func NewS3Store(client *s3.Client, bucket, region, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region, prefix: prefix}
}

func (s *S3Store) Upload(ctx context.Context, dataURL string) (string, error) {
	data, contentType, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if len(data) > maxImageBytes {
		return "", ErrInvalidImage
	}

	key := s.prefix + uuid.NewString() + extensionFor(contentType)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
