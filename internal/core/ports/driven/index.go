package driven

import "github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"

// IndexSnapshotStore persists built keyword indexes keyed by corpus hash.
type IndexSnapshotStore interface {
	// Load returns the index for a corpus hash.
	// Returns domain.ErrNotFound if no snapshot exists.
	Load(hash string) (domain.InvertedIndex, error)

	// Save writes the index for a corpus hash.
	Save(hash string, index domain.InvertedIndex) error
}
