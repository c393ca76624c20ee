package writer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "coincast/config"
	"coincast/logger"
)

// ArtifactMirror uploads rendered artifacts to an S3 bucket so delivery
// targets other than the bot endpoint can pick them up. It is optional and
// config-gated; the pipeline works unchanged without it.
type ArtifactMirror struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logger.Log
}

// NewArtifactMirror creates the mirror from configuration. It configures the
// AWS SDK, validates that credentials resolve, and fails fast otherwise.
func NewArtifactMirror(cfg *appconfig.Config) (*ArtifactMirror, error) {
	log := logger.GetLogger()
	ctx := context.Background()

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Storage.S3.Region)}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithComponent("artifact_mirror").WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsConfig.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	mirror := &ArtifactMirror{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.Storage.S3.Bucket,
		prefix: cfg.Storage.S3.Prefix,
		log:    log,
	}

	log.WithComponent("artifact_mirror").WithFields(logger.Fields{
		"region": cfg.Storage.S3.Region,
		"bucket": mirror.bucket,
	}).Debug("artifact mirror initialized")

	return mirror, nil
}

// Upload mirrors one artifact file under <prefix>/<runDate>/<fileName>.
func (m *ArtifactMirror) Upload(ctx context.Context, runDate, filePath string) error {
	fileName := filepath.Base(filePath)
	key := path.Join(m.prefix, runDate, fileName)

	log := m.log.WithComponent("artifact_mirror").WithFields(logger.Fields{
		"bucket": m.bucket,
		"key":    key,
	})

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", filePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact %s: %w", filePath, err)
	}

	if _, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String("image/svg+xml"),
		ContentLength: aws.Int64(info.Size()),
	}); err != nil {
		log.WithError(err).Warn("artifact upload failed")
		return fmt.Errorf("failed to upload %s: %w", fileName, err)
	}

	logger.IncrementMirrorUpload(info.Size())
	log.WithFields(logger.Fields{"bytes": info.Size()}).Info("artifact mirrored")
	return nil
}

// UploadAll mirrors every path, stopping at the first failure.
func (m *ArtifactMirror) UploadAll(ctx context.Context, runDate string, paths []string) error {
	for _, p := range paths {
		if err := m.Upload(ctx, runDate, p); err != nil {
			return err
		}
	}
	return nil
}
