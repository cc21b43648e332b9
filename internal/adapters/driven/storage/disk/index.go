package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// Ensure IndexSnapshots implements the interface.
var _ driven.IndexSnapshotStore = (*IndexSnapshots)(nil)

// IndexSnapshots stores keyword indexes as <dir>/index_<hash>.json.
type IndexSnapshots struct {
	dir string
}

// NewIndexSnapshots creates the snapshot directory if needed.
func NewIndexSnapshots(dir string) (*IndexSnapshots, error) {
	if dir == "" {
		return nil, errors.New("index directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	return &IndexSnapshots{dir: dir}, nil
}

func (s *IndexSnapshots) path(hash string) (string, error) {
	if hash == "" || filepath.Base(hash) != hash {
		return "", fmt.Errorf("%w: corpus hash %q", domain.ErrInvalidInput, hash)
	}
	return filepath.Join(s.dir, "index_"+hash+".json"), nil
}

// Load returns the index for a corpus hash.
func (s *IndexSnapshots) Load(hash string) (domain.InvertedIndex, error) {
	path, err := s.path(hash)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read index snapshot: %w", err)
	}

	var index domain.InvertedIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode index snapshot: %w", err)
	}
	return index, nil
}

// Save writes the index for a corpus hash.
func (s *IndexSnapshots) Save(hash string, index domain.InvertedIndex) error {
	path, err := s.path(hash)
	if err != nil {
		return err
	}
	return writeJSON(path, index)
}
