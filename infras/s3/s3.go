// Package s3 stores uploaded files in one S3 compatible bucket, addressed by
// object key and served from the configured public domain.
package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"taskboard/config"
	"taskboard/infras/otel"
	"taskboard/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// maxDeleteBatch is the number of keys a single DeleteObjects call accepts.
const maxDeleteBatch = 1000

type S3 interface {
	// Upload stores data under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, data []byte) (url string, err error)
	// Delete removes the objects. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// KeyFromURL maps a URL returned by Upload back to its key.
	KeyFromURL(url string) (key string, ok bool)
}

type s3Impl struct {
	client   *s3.Client
	bucket   string
	prefixes []string
	public   string
	otel     otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) S3 {
	conf := cfg.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, "")),
		awsConfig.WithRegion(conf.Region),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if conf.APIEndpoint != "" {
			o.BaseEndpoint = aws.String(conf.APIEndpoint)
		}

		o.UsePathStyle = true
	})

	return newWithClient(client, conf.BucketName, conf.APIEndpoint, conf.PublicDomain, otel)
}

func newWithClient(client *s3.Client, bucket, endpoint, publicDomain string, otel otel.Otel) *s3Impl {
	public := strings.TrimSuffix(publicDomain, "/")

	// objects are reachable through the public domain and through the API endpoint
	var prefixes []string
	if public != "" {
		prefixes = append(prefixes, public+"/")
	}

	if endpoint != "" {
		prefixes = append(prefixes, strings.TrimSuffix(endpoint, "/")+"/"+bucket+"/")
	}

	return &s3Impl{
		client:   client,
		bucket:   bucket,
		prefixes: prefixes,
		public:   public,
		otel:     otel,
	}
}

func (svc *s3Impl) Upload(ctx context.Context, key, contentType string, data []byte) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Upload")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttributes(map[string]any{
		"s3.bucket": svc.bucket,
		"s3.key":    key,
		"s3.size":   len(data),
	})

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(svc.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return svc.public + "/" + key, nil
}

func (svc *s3Impl) Delete(ctx context.Context, keys ...string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	scope.SetAttributes(map[string]any{
		"s3.bucket": svc.bucket,
		"s3.keys":   keys,
	})

	for start := 0; start < len(keys); start += maxDeleteBatch {
		batch := keys[start:min(start+maxDeleteBatch, len(keys))]

		objects := make([]types.ObjectIdentifier, 0, len(batch))
		for _, key := range batch {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := svc.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(svc.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete objects: %w", err)
		}

		if len(out.Errors) > 0 {
			first := out.Errors[0]

			return fmt.Errorf("delete object %s: %s: %s (%d failed)",
				aws.ToString(first.Key), aws.ToString(first.Code), aws.ToString(first.Message), len(out.Errors))
		}
	}

	return nil
}

func (svc *s3Impl) KeyFromURL(url string) (string, bool) {
	for _, prefix := range svc.prefixes {
		if key, ok := strings.CutPrefix(url, prefix); ok && key != "" {
			return key, true
		}
	}

	return "", false
}
