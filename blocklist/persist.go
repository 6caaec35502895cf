package blocklist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Persister loads and saves the blocklist document.
type Persister interface {
	Load() (*Data, error)
	Save(d *Data) error
}

// FilePersister stores the document as a JSON file. Writes go to a temporary
// file in the same directory that is renamed over the target, so readers of
// the file never see a partial document.
type FilePersister struct {
	Path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

// Load reads the document. A missing file yields an empty document.
func (p *FilePersister) Load() (*Data, error) {
	b, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read blocklist %s: %w", p.Path, err)
	}
	d, err := ParseData(b)
	if err != nil {
		return nil, fmt.Errorf("parse blocklist %s: %w", p.Path, err)
	}
	return d, nil
}

func (p *FilePersister) Save(d *Data) error {
	b, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("encode blocklist: %w", err)
	}

	dir := filepath.Dir(p.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, p.Path); err != nil {
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}
