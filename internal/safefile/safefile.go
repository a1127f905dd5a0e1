/*
Package safefile writes files so that a reader never observes a partially
written result.

The content is written to a temporary file in the destination directory
which is renamed over the destination only once everything has been written
and flushed. On any failure the temporary file is removed and the
destination is left untouched.
*/
package safefile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

// Write creates file with the content produced by fn.
func Write(file string, fn func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(file), "."+filepath.Base(file)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	w := bufio.NewWriter(f)
	if err = fn(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), file)
}
