package configs

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client uses the default AWS credential chain for env.AWSRegion.
func NewS3Client(ctx context.Context, env ENV) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(env.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS default config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}
