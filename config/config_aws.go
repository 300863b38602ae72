package config

import (
	"context"
	"fmt"

	"github.com/archivelab/scriptorium/pkg/ocr"
	xtextract "github.com/archivelab/scriptorium/pkg/ocr/textract"
	"github.com/archivelab/scriptorium/pkg/storage"
	xs3 "github.com/archivelab/scriptorium/pkg/storage/s3"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"
)

// Clients builds the shared remote collaborators. Both are stateless
// per call and safe for concurrent use by all workers.
func (cfg *Config) Clients(ctx context.Context) (storage.Store, ocr.Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))

	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}

	store, err := xs3.New(cfg.Bucket, s3.NewFromConfig(awsCfg))

	if err != nil {
		return nil, nil, err
	}

	provider, err := xtextract.New(cfg.Bucket, textract.NewFromConfig(awsCfg))

	if err != nil {
		return nil, nil, err
	}

	return store, provider, nil
}
