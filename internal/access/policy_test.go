package access

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviosa/riverbank-bot/internal/models"
)

const ownerID = int64(1000)

func newTestPolicy(t *testing.T) (*Policy, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "managers.json")
	p, err := LoadPolicy(path, ownerID)
	require.NoError(t, err)
	return p, path
}

func TestCanModify(t *testing.T) {
	p, _ := newTestPolicy(t)
	require.NoError(t, p.Promote(2000, "riv"))

	assert.True(t, p.CanModify(ownerID, ""))
	assert.True(t, p.CanModify(2000, "riv"))
	assert.True(t, p.CanModify(2000, "@Riv"))
	assert.False(t, p.CanModify(3000, "someone"))
	assert.False(t, p.CanModify(3000, ""))
}

func TestPromotePersistsImmediately(t *testing.T) {
	p, path := newTestPolicy(t)
	require.NoError(t, p.Promote(2000, "riv"))

	reloaded, err := LoadPolicy(path, ownerID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsManager("riv"))
	assert.Equal(t, []string{"riv"}, reloaded.Managers())
}

func TestPromoteDuplicateLeavesFileUnchanged(t *testing.T) {
	p, path := newTestPolicy(t)
	require.NoError(t, p.Promote(2000, "riv"))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = p.Promote(2000, "@riv")
	assert.ErrorIs(t, err, models.ErrAlreadyManager)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDemote(t *testing.T) {
	p, path := newTestPolicy(t)
	require.NoError(t, p.Promote(2000, "riv"))
	require.NoError(t, p.Promote(2001, "zao"))

	require.NoError(t, p.Demote(2000, "@riv"))
	assert.False(t, p.IsManager("riv"))
	assert.True(t, p.IsManager("zao"))

	err := p.Demote(2000, "riv")
	assert.ErrorIs(t, err, models.ErrNotManager)

	reloaded, err := LoadPolicy(path, ownerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"zao"}, reloaded.Managers())
}

func TestOwnerCannotBeModified(t *testing.T) {
	p, _ := newTestPolicy(t)

	assert.ErrorIs(t, p.Promote(ownerID, "boss"), models.ErrUnauthorized)
	assert.ErrorIs(t, p.Demote(ownerID, "boss"), models.ErrUnauthorized)
}

func TestLoadMissingFileSeedsEmptySet(t *testing.T) {
	p, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.json"), ownerID)
	require.NoError(t, err)
	assert.Empty(t, p.Managers())
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "managers.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := LoadPolicy(path, ownerID)
	assert.Error(t, err)
}
