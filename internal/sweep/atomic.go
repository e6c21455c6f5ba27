package sweep

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/sweeprun/internal/common/util"
)

const tempSuffix = ".tmp"

// writeAtomic creates path's directory if needed and calls write with a temporary file in
// that directory. The temporary file is renamed over path only if write succeeds, so a file
// at path is always complete. On failure the temporary file is removed.
//
// Errors returned by write are passed through unchanged.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "error creating output folder %s", dir)
	}

	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+util.NewULID()+tempSuffix)
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrapf(err, "error creating temporary file in %s", dir)
	}
	defer func() {
		if err == nil {
			return
		}
		_ = f.Close()
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.WithError(rmErr).Warnf("Failed to remove temporary file %s", tmpPath)
		}
	}()

	if err = write(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return errors.Wrapf(err, "error syncing %s", tmpPath)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "error closing %s", tmpPath)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "error moving output to %s", path)
	}
	return nil
}

// isCompleted returns true if a regular file exists at path.
func isCompleted(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}
	return info.Mode().IsRegular(), nil
}
