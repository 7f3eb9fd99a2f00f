package market

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	csvDir := t.TempDir()
	cacheDir := t.TempDir()

	assert.NoError(t, WriteCSV(csvDir, NewSeries("AAA", flatBars(25, 10, 500))))
	assert.NoError(t, WriteCSV(csvDir, NewSeries("BBB", flatBars(25, 20, 700))))

	store := testStore(&CSVLoader{Dir: csvDir})
	assert.NoError(t, store.EnsureSnapshot(context.Background(), cacheDir, csvDir, 2))

	// A fresh store with no loader access should come entirely from the
	// snapshot.
	restored := testStore(&stubLoader{})
	ok, err := restored.LoadSnapshot(cacheDir, csvDir)
	assert.NoError(t, err)
	assert.True(t, ok)

	bar, found := restored.Bar("AAA", day(3))
	assert.True(t, found)
	assert.Equal(t, 10.0, bar.Open)

	// Rolling fields survive the round trip.
	bbb, found := restored.Bar("BBB", day(24))
	assert.True(t, found)
	assert.Equal(t, 700.0, bbb.AvgVolume)
}

func TestSnapshotInvalidatedByHashChange(t *testing.T) {
	t.Parallel()

	csvDir := t.TempDir()
	cacheDir := t.TempDir()

	assert.NoError(t, WriteCSV(csvDir, NewSeries("AAA", flatBars(5, 10, 500))))

	store := testStore(&CSVLoader{Dir: csvDir})
	assert.NoError(t, store.EnsureSnapshot(context.Background(), cacheDir, csvDir, 1))

	// Touch the data: the old snapshot must no longer match.
	assert.NoError(t, WriteCSV(csvDir, NewSeries("AAA", flatBars(6, 10, 500))))
	future := time.Now().Add(time.Hour)
	assert.NoError(t, os.Chtimes(filepath.Join(csvDir, "AAA.csv"), future, future))

	stale := testStore(&stubLoader{})
	ok, err := stale.LoadSnapshot(cacheDir, csvDir)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveSnapshotRemovesStale(t *testing.T) {
	t.Parallel()

	csvDir := t.TempDir()
	cacheDir := t.TempDir()

	assert.NoError(t, WriteCSV(csvDir, NewSeries("AAA", flatBars(5, 10, 500))))

	// Plant a stale snapshot from an older data set.
	stale := filepath.Join(cacheDir, snapshotPrefix+"deadbeef.snap")
	assert.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	store := testStore(&CSVLoader{Dir: csvDir})
	assert.NoError(t, store.EnsureSnapshot(context.Background(), cacheDir, csvDir, 1))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestDirHashStable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.NoError(t, WriteCSV(dir, NewSeries("AAA", flatBars(5, 10, 500))))

	h1, err := DirHash(dir)
	assert.NoError(t, err)
	h2, err := DirHash(dir)
	assert.NoError(t, err)
	assert.Equal(t, h1, h2)
}
