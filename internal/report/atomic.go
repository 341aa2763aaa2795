package report

import (
	"fmt"
	"io"

	"github.com/google/renameio/v2"
)

// writeAtomic streams fn's output to a pending file and replaces path only
// when fn succeeds. A failed write leaves any existing file untouched.
func writeAtomic(path string, fn func(io.Writer) error) error {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer pf.Cleanup()

	if err := fn(pf); err != nil {
		return err
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
