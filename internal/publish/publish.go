package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/services"
	"reelforge/internal/textutil"
)

// DefaultLinkTTL is how long presigned download links stay valid.
const DefaultLinkTTL = 7 * 24 * time.Hour

// ErrObjectExists is returned when the destination key is already taken.
var ErrObjectExists = errors.New("object already exists")

// ObjectStore is the subset of S3 the publisher needs.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// Location identifies a published video.
type Location struct {
	Bucket string
	Key    string
	URL    string
	Size   int64
}

// URI returns the s3:// form of the location.
func (l Location) URI() string {
	return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)
}

// Publisher uploads finished renders.
type Publisher struct {
	store   ObjectStore
	bucket  string
	prefix  string
	linkTTL time.Duration
	logger  *slog.Logger
}

// New builds a Publisher from the [publish] section. It returns nil when
// publishing is not configured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Publisher, error) {
	if !cfg.PublishEnabled() {
		return nil, nil
	}
	store, err := NewS3(ctx, S3Config{
		Region:       cfg.Publish.Region,
		Profile:      cfg.Publish.Profile,
		UsePathStyle: cfg.Publish.UsePathStyle,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "aws config", "load AWS configuration", err)
	}
	return NewWithStore(store, cfg.Publish.S3Bucket, cfg.Publish.S3Prefix, logger), nil
}

// NewWithStore wires a Publisher to an arbitrary object store.
func NewWithStore(store ObjectStore, bucket, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Publisher{
		store:   store,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		linkTTL: DefaultLinkTTL,
		logger:  logging.NewComponentLogger(logger, "publish"),
	}
}

// Key returns the object key for a local file produced by jobID.
func (p *Publisher) Key(localPath, jobID string) string {
	name := textutil.SafeFileName(filepath.Base(localPath))
	if jobID = strings.TrimSpace(jobID); jobID != "" {
		name = jobID + "-" + name
	}
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Upload copies localPath to the bucket and returns where it landed along
// with a presigned download link. Existing objects are never overwritten.
func (p *Publisher) Upload(ctx context.Context, localPath, jobID string) (Location, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Location{}, services.Wrap(services.ErrResource, "publish", "open", "rendered video is unreadable", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Location{}, services.Wrap(services.ErrResource, "publish", "stat", "rendered video is unreadable", err)
	}

	loc := Location{Bucket: p.bucket, Key: p.Key(localPath, jobID), Size: info.Size()}
	exists, err := p.store.Exists(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return Location{}, services.Wrap(services.ErrExternalTool, "publish", "head object", loc.URI(), err)
	}
	if exists {
		return Location{}, services.Wrap(services.ErrValidation, "publish", "head object", loc.URI(), ErrObjectExists)
	}

	contentType := contentTypeFor(localPath)
	started := time.Now()
	if err := p.store.Put(ctx, loc.Bucket, loc.Key, f, loc.Size, contentType); err != nil {
		return Location{}, services.Wrap(services.ErrExternalTool, "publish", "put object", loc.URI(), err)
	}

	url, err := p.store.PresignGet(ctx, loc.Bucket, loc.Key, p.linkTTL)
	if err != nil {
		logging.WarnWithContext(p.logger, "presign failed; upload succeeded without a share link", "publish_presign_failed",
			logging.String("object", loc.URI()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no download link is printed"),
		)
	}
	loc.URL = url

	p.logger.Info("video published",
		logging.String("object", loc.URI()),
		logging.Int64("bytes", loc.Size),
		logging.Duration("elapsed", time.Since(started)),
	)
	return loc, nil
}

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

func contentTypeFor(localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
