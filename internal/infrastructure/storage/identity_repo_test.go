package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavadero/internal/domain/models"
)

func TestLoadOrCreatePersistsIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "device.json")
	repo := NewFileIdentityRepository(path)

	first, created, err := LoadOrCreate(repo)
	require.NoError(t, err)
	assert.True(t, created)
	_, err = uuid.Parse(first.ID)
	require.NoError(t, err)

	// новый экземпляр репозитория (перезапуск процесса) видит тот же ID
	second, created, err := LoadOrCreate(NewFileIdentityRepository(path))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestLoadMissingFile(t *testing.T) {
	repo := NewFileIdentityRepository(filepath.Join(t.TempDir(), "none.json"))
	_, err := repo.Load()
	assert.ErrorIs(t, err, models.ErrNoIdentity)
}

func TestLoadCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, _, err := LoadOrCreate(NewFileIdentityRepository(path))
	assert.Error(t, err)
}

func TestLoadEmptyID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":""}`), 0644))

	identity, created, err := LoadOrCreate(NewFileIdentityRepository(path))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, identity.ID)
}
