// Package fsio is the file collaborator for the CLI: existence and
// overwrite checks, and buffer reads/writes with progress feedback for
// large files. The core packages never import it.
package fsio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb"
)

// streamingThreshold is the file size above which reads go through a
// buffered reader with a progress bar.
const streamingThreshold = 100 << 20

// ErrExists marks a refused overwrite.
var ErrExists = errors.New("output file already exists")

// Exists verifies path names a readable file.
func Exists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", path)
		}
		return fmt.Errorf("cannot read input file %s: %w", path, err)
	}
	return nil
}

// CanWrite checks whether path may be written. An existing file is only
// writable with force.
func CanWrite(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s (use -f to overwrite)", ErrExists, path)
	}
	return nil
}

// ReadFile loads the whole file into memory. Files above the streaming
// threshold are read through a byte-count progress bar on progressOut;
// pass nil to suppress it.
func ReadFile(path string, progressOut io.Writer) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read input file %s: %w", path, err)
	}

	if fi.Size() <= streamingThreshold || progressOut == nil {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read input file %s: %w", path, err)
		}
		return b, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read input file %s: %w", path, err)
	}
	defer f.Close()

	bar := pb.New64(fi.Size()).SetUnits(pb.U_BYTES)
	bar.Output = progressOut
	bar.Start()
	defer bar.Finish()

	out, err := io.ReadAll(bar.NewProxyReader(f))
	if err != nil {
		return nil, fmt.Errorf("cannot read input file %s: %w", path, err)
	}
	return out, nil
}

// WriteFile writes data to path, refusing to clobber an existing file
// unless force is set.
func WriteFile(path string, data []byte, force bool) error {
	if err := CanWrite(path, force); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
