package retention

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Archiver uploads a rotated file's bytes to cold storage before the
// local copy is deleted. connect/s3x.Uploader satisfies this with an
// S3 PutObject, but any object-store client with this shape works.
type Archiver interface {
	Upload(ctx context.Context, key string, body io.Reader) error
}

// ApplyArchived runs the same selection Apply does, but for each file a
// sweep would delete, uploads it through arch first (when arch is
// non-nil) and only deletes the local copy once the upload succeeds. A
// failed upload leaves the file on disk so the next rotation's sweep
// retries it, rather than losing data to a transient archival outage.
func (p Policy) ApplyArchived(ctx context.Context, arch Archiver, files []FileInfo, now time.Time) int {
	doomed := p.Sweep(files, now)
	removed := 0
	for _, f := range doomed {
		if arch != nil {
			if err := archiveOne(ctx, arch, f); err != nil {
				continue
			}
		}
		if err := os.Remove(f.Path); err == nil {
			removed++
		}
	}
	return removed
}

func archiveOne(ctx context.Context, arch Archiver, f FileInfo) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer file.Close()
	return arch.Upload(ctx, filepath.Base(f.Path), file)
}
