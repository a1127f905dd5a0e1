package grayarch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is the state of a single file known to a Queue.
type File struct {
	Name       string
	Path       string
	Extension  string
	Size       int64
	Processing bool
	Status     string
}

func newFile(path string) *File {
	f := &File{
		Name:      filepath.Base(path),
		Path:      path,
		Extension: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	}
	if info, err := os.Stat(path); err == nil {
		f.Size = info.Size()
	}
	return f
}

// ListFiles returns the bitmap and BARCH files directly inside dir, sorted
// by name. Subdirectories are not descended into.
func ListFiles(dir string) ([]File, error) {
	d, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	entries, err := d.ReadDir(0)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, entry := range entries {
		// Ignore any hidden files, otherwise we end up fighting with things like Spotlight, etc.
		if entry.Name()[0] == '.' || !entry.Type().IsRegular() {
			continue
		}
		if _, err := DirectionOf(entry.Name()); err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, err
		}

		path, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		files = append(files, File{
			Name:      entry.Name(),
			Path:      path,
			Extension: strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name())), "."),
			Size:      info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, nil
}
