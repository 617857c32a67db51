// Package objectstore mirrors best structures to S3-compatible storage so
// long campaigns survive the machine the run happened on.
package objectstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

// Archiver uploads generation bests as immutable objects.
type Archiver struct {
	client *minio.Client
	bucket string
	log    logging.Logger
}

func NewArchiver(cfg config.MinIOConfig, log logging.Logger) (*Archiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorageError, "failed to initialise object store client")
	}
	return &Archiver{client: client, bucket: cfg.Bucket, log: log.Named("objectstore")}, nil
}

// EnsureBucket creates the archive bucket when it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorageError, "failed to probe archive bucket")
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorageError, "failed to create archive bucket")
	}
	return nil
}

// ArchiveBest uploads the structure and returns its object URI.
func (a *Archiver) ArchiveBest(ctx context.Context, sessionID string, generation int, candidateID string, pdbText string) (string, error) {
	objectName := fmt.Sprintf("runs/%s/gen_%03d/%s.pdb", sessionID, generation, candidateID)
	reader := strings.NewReader(pdbText)

	_, err := a.client.PutObject(ctx, a.bucket, objectName, reader, int64(len(pdbText)), minio.PutObjectOptions{
		ContentType: "chemical/x-pdb",
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeStorageError, "failed to upload best structure")
	}

	uri := fmt.Sprintf("s3://%s/%s", a.bucket, objectName)
	a.log.Info("mirrored generation best to object store",
		logging.String("session_id", sessionID),
		logging.Int("generation", generation),
		logging.String("object", uri))
	return uri, nil
}
