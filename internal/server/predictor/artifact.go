package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sara-git-hub/diabcare/internal/common"
	"github.com/sara-git-hub/diabcare/internal/server/config"
)

// Seams for testing the S3 path without network access.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
)

// LoadScorer reads the model artifact named by cfg.ModelSource (a local
// path or an s3://bucket/key URI) and builds a LogisticModel from it. Any
// failure — unreadable source, malformed JSON, bad shape — is reported as
// common.ErrModelUnavailable; the artifact is static, so there is no
// point retrying.
func LoadScorer(ctx context.Context, cfg *config.Config) (*LogisticModel, error) {
	raw, err := readArtifact(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", common.ErrModelUnavailable, cfg.ModelSource, err)
	}

	artifact := &Artifact{}
	if err := json.Unmarshal(raw, artifact); err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", common.ErrModelUnavailable, cfg.ModelSource, err)
	}

	model, err := NewLogisticModel(artifact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrModelUnavailable, err)
	}
	return model, nil
}

// ParseS3URI splits an "s3://bucket/key" URI into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed S3 URI %q, want s3://bucket/key", uri)
	}
	return bucket, key, nil
}

func readArtifact(ctx context.Context, cfg *config.Config) ([]byte, error) {
	if !strings.HasPrefix(cfg.ModelSource, "s3://") {
		return os.ReadFile(cfg.ModelSource)
	}

	bucket, key, err := ParseS3URI(cfg.ModelSource)
	if err != nil {
		return nil, err
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	out, err := getObject(client, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
