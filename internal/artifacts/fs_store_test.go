package artifacts_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger_ingest_app/internal/artifacts"
)

func TestFSStore_SaveAndRemove(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := artifacts.NewFSStore(root)
	require.NoError(t, err)

	locator, err := store.Save(ctx, "statement.csv", strings.NewReader("Date,Amount\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(locator, "_statement.csv"))

	content, err := os.ReadFile(filepath.Join(root, locator))
	require.NoError(t, err)
	assert.Equal(t, "Date,Amount\n", string(content))

	require.NoError(t, store.Remove(ctx, locator))
	_, err = os.Stat(filepath.Join(root, locator))
	assert.True(t, os.IsNotExist(err))
}

func TestFSStore_SaveStripsUploadedPath(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := artifacts.NewFSStore(root)
	require.NoError(t, err)

	// A client-supplied filename with directories must not create them
	locator, err := store.Save(ctx, "../../etc/statement.csv", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotContains(t, locator, "/")
	assert.True(t, strings.HasSuffix(locator, "_statement.csv"))
}

func TestFSStore_SaveDistinctLocatorsForSameName(t *testing.T) {
	ctx := context.Background()
	store, err := artifacts.NewFSStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save(ctx, "export.csv", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.Save(ctx, "export.csv", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestFSStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := artifacts.NewFSStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove(ctx, "never-saved.csv"))
}

func TestFSStore_RemoveNeutralizesTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := artifacts.NewFSStore(root)
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(root), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))
	defer os.Remove(outside)

	// The locator is re-rooted inside the store, so the file outside survives
	require.NoError(t, store.Remove(ctx, "../outside.txt"))

	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}

func TestFSStore_RemoveRejectsEmptyLocator(t *testing.T) {
	store, err := artifacts.NewFSStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Remove(context.Background(), ""))
}

func TestNewFSStore_EmptyRoot(t *testing.T) {
	store, err := artifacts.NewFSStore("")

	require.Error(t, err)
	assert.Nil(t, store)
}
