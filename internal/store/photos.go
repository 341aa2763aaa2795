package store

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// PhotoIngester copies board photos into the pictures directory and returns
// the data-root-relative path to store on the record.
type PhotoIngester struct {
	root     string
	pictures string
}

// NewPhotoIngester returns an ingester for the given layout.
func NewPhotoIngester(paths Paths) *PhotoIngester {
	return &PhotoIngester{root: paths.Root, pictures: paths.Pictures}
}

// Ingest stores src as the tag photo of boardID. Relative sources are
// resolved against the data root, so paths already stored on a record can be
// passed back in. A source already inside the pictures directory is kept
// as is, whether or not the file is still there, so re-saving a record never
// drops its photo reference. Any copy failure is logged and yields "".
func (p *PhotoIngester) Ingest(boardID, tag, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	abs := p.Resolve(src)

	picturesAbs, err := filepath.Abs(p.pictures)
	if err != nil {
		log.Printf("store: resolving pictures dir %s: %v", p.pictures, err)
		return ""
	}
	if strings.HasPrefix(abs, picturesAbs+string(filepath.Separator)) {
		return p.relative(abs)
	}

	name := fmt.Sprintf("%s_%s%s", boardID, tag, strings.ToLower(filepath.Ext(abs)))
	dst := filepath.Join(picturesAbs, name)
	if err := copyPhoto(abs, dst); err != nil {
		log.Printf("store: copying %s photo for board %s: %v", tag, boardID, err)
		return ""
	}
	return p.relative(dst)
}

// Resolve turns a stored photo path into an absolute filesystem path.
func (p *PhotoIngester) Resolve(path string) string {
	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.root, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (p *PhotoIngester) relative(abs string) string {
	rootAbs, err := filepath.Abs(p.root)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// copyPhoto copies src to dst atomically and carries over the source
// modification time.
func copyPhoto(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	pf, err := renameio.NewPendingFile(dst, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", dst, err)
	}
	defer pf.Cleanup()

	if _, err := io.Copy(pf, in); err != nil {
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing %s: %w", dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
