// Package assets stores uploaded image files for the catalog.
//
// The catalog engine never holds raw bytes, only opaque asset references
// produced by this package. References double as filenames under the
// asset directory, so they must stay path-safe.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

// Store is the asset collaborator consumed by the catalog engine.
type Store interface {
	// StoreAsset durably writes the uploaded bytes and returns a
	// collision-resistant reference for them.
	StoreAsset(r io.Reader, suggestedName string) (string, error)

	// DeleteAsset removes the asset. Deleting an absent asset is a no-op,
	// not an error; cleanup is best-effort.
	DeleteAsset(ref string) error

	// Path resolves a reference to a local file path for serving.
	Path(ref string) (string, error)
}

// Compile-time interface check.
var _ Store = (*DiskStore)(nil)

// DiskStore keeps assets as individual files in one directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the asset directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		return nil, errors.New("assets: directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("assets: creating directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// StoreAsset writes the bytes under a generated reference.
//
// REFERENCE FORMAT: <xid>_<sanitized original name>
// xid encodes a timestamp plus random machine/process entropy, so two
// uploads of the same filename never collide. Keeping the original name
// as a suffix makes the asset directory human-readable.
func (s *DiskStore) StoreAsset(r io.Reader, suggestedName string) (string, error) {
	name := sanitizeName(suggestedName)
	ref := xid.New().String() + "_" + name

	f, err := os.OpenFile(filepath.Join(s.dir, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("assets: creating %s: %w", ref, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("assets: writing %s: %w", ref, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("assets: closing %s: %w", ref, err)
	}

	return ref, nil
}

// DeleteAsset removes the file behind ref. An already-absent asset is
// treated as success.
func (s *DiskStore) DeleteAsset(ref string) error {
	path, err := s.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("assets: deleting %s: %w", ref, err)
	}
	return nil
}

// Path validates the reference and returns the file path behind it.
// References are filenames, never paths. Anything that would escape the
// asset directory is rejected.
func (s *DiskStore) Path(ref string) (string, error) {
	if ref == "" {
		return "", errors.New("assets: empty reference")
	}
	if ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", fmt.Errorf("assets: invalid reference %q", ref)
	}
	return filepath.Join(s.dir, ref), nil
}

// sanitizeName reduces an uploaded filename to a safe suffix for the
// reference: base name only, spaces collapsed, hostile characters dropped.
func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "upload"
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}

	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}
