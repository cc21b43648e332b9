package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

func TestIndexSnapshots_SaveLoad(t *testing.T) {
	s, err := NewIndexSnapshots(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	index := domain.InvertedIndex{
		"치킨":  {"1", "2"},
		"떡볶이": {"4"},
	}

	require.NoError(t, s.Save("abc123", index))
	got, err := s.Load("abc123")

	require.NoError(t, err)
	assert.Equal(t, index, got)
}

func TestIndexSnapshots_Missing(t *testing.T) {
	s, err := NewIndexSnapshots(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load("nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexSnapshots_InvalidHash(t *testing.T) {
	s, err := NewIndexSnapshots(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Save("../escape", domain.InvertedIndex{}), domain.ErrInvalidInput)
	_, err = s.Load("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewIndexSnapshots_RequiresDir(t *testing.T) {
	_, err := NewIndexSnapshots("")
	require.Error(t, err)
}
