package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingFilesOrdered(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_snapshots.up.sql": {Data: []byte("select 1")},
		"migrations/001_init.up.sql":      {Data: []byte("select 1")},
		"migrations/001_init.down.sql":    {Data: []byte("select 1")},
		"migrations/README.md":            {Data: []byte("notes")},
	}
	files, err := pendingFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.up.sql", "002_snapshots.up.sql"}, files)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := pendingFiles(migrationFiles)
	require.NoError(t, err)
	assert.Contains(t, files, "001_init.up.sql")
}
