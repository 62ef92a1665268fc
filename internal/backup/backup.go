// Package backup implements the CacheBackupService (SPEC_FULL domain
// stack): optional S3 snapshot/restore of the cache database file,
// grounded on the teacher's disk-snapshot pattern in
// services/mvt_backup_mbtiles.go (VACUUM INTO a point-in-time copy)
// and its otherwise-unused aws-sdk-go-v2/S3 dependency closet.
//
// Entirely optional: Service.Enabled() is false whenever
// config.BackupConfig.Bucket is empty, and no method is ever invoked
// automatically — uploads/restores are caller-triggered, the same way
// clear_cache/clean_expired_cache are in spec.md §6, so a backup can
// never race an in-flight render request.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"airspacecache/internal/config"
	"airspacecache/internal/logging"

	_ "modernc.org/sqlite"
)

// Service uploads/restores point-in-time snapshots of the cache
// database to an S3-compatible bucket.
type Service struct {
	cfg      config.BackupConfig
	client   *s3.Client
	uploader *manager.Uploader
	downloader *manager.Downloader
	log      *slog.Logger
}

// New builds a Service. When cfg.Bucket is empty the returned Service
// is disabled: every method becomes a documented no-op, so callers
// never need to branch on whether backups are configured.
func New(ctx context.Context, cfg config.BackupConfig, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = logging.Discard()
	}
	if cfg.Bucket == "" {
		return &Service{cfg: cfg, log: log}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &Service{
		cfg:        cfg,
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		log:        log,
	}, nil
}

// Enabled reports whether a bucket is configured.
func (s *Service) Enabled() bool { return s.cfg.Bucket != "" }

// Snapshot uploads a consistent point-in-time copy of the store's
// SQLite file at dbPath. It takes the copy via VACUUM INTO, the same
// mechanism the teacher's MVTBackupMBTiles.Snapshot uses to get a
// structurally-valid file out of a live database without locking out
// writers for longer than the VACUUM itself takes. The uploaded key is
// tagged with a UUID and an RFC3339 timestamp so concurrent devices
// never collide.
func (s *Service) Snapshot(ctx context.Context, dbPath string) (key string, err error) {
	if !s.Enabled() {
		return "", nil
	}

	tmp, err := vacuumInto(dbPath)
	if err != nil {
		return "", fmt.Errorf("snapshotting database: %w", err)
	}
	defer os.Remove(tmp)

	f, err := os.Open(tmp)
	if err != nil {
		return "", fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	key = objectKey(s.cfg.Prefix, time.Now())
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("uploading snapshot: %w", err)
	}

	s.log.InfoContext(ctx, "cache snapshot uploaded", slog.String("key", key))
	return key, nil
}

// RestoreLatest downloads the most recently created snapshot object
// into destPath, overwriting it. Intended for first-run on a new
// device. Returns ("", nil) when disabled or when the bucket has no
// snapshots yet.
func (s *Service) RestoreLatest(ctx context.Context, destPath string) (key string, err error) {
	if !s.Enabled() {
		return "", nil
	}

	key, err = s.latestKey(ctx)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", nil
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("creating restore destination: %w", err)
	}
	defer out.Close()

	_, err = s.downloader.Download(ctx, out, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("downloading snapshot %s: %w", key, err)
	}

	s.log.InfoContext(ctx, "cache snapshot restored", slog.String("key", key))
	return key, nil
}

// latestKey lists objects under the configured prefix and returns the
// lexicographically greatest key — object keys embed an RFC3339
// timestamp first, so lexicographic order is chronological order.
func (s *Service) latestKey(ctx context.Context) (string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(s.cfg.Prefix + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("listing snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	if len(keys) == 0 {
		return "", nil
	}
	sort.Strings(keys)
	return keys[len(keys)-1], nil
}

// objectKey builds a sortable, collision-resistant snapshot key:
// "<prefix>/<RFC3339 UTC timestamp with colons removed>-<uuid>.db".
func objectKey(prefix string, ts time.Time) string {
	stamp := strings.ReplaceAll(ts.UTC().Format(time.RFC3339), ":", "")
	return fmt.Sprintf("%s/%s-%s.db", prefix, stamp, uuid.NewString())
}

// vacuumInto copies dbPath into a fresh temp file via SQLite's
// VACUUM INTO, producing a structurally consistent snapshot even
// while the live connection holds the database open.
func vacuumInto(dbPath string) (string, error) {
	tmp, err := os.CreateTemp("", "airspace-snapshot-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	os.Remove(tmpPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return "", fmt.Errorf("opening source database: %w", err)
	}
	defer db.Close()

	quoted := strings.ReplaceAll(tmpPath, "'", "''")
	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		return "", fmt.Errorf("VACUUM INTO: %w", err)
	}

	return tmpPath, nil
}
