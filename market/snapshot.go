package market

import (
	"context"
	"crypto/md5"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Snapshot support: a gob dump of every loaded series, keyed by a
// content hash of the CSV directory. Loading the snapshot replaces
// re-parsing thousands of CSV files on every run; any change to the
// underlying files changes the hash and the snapshot is rebuilt.

const snapshotPrefix = "daily_"

// DirHash hashes the name, size and mtime of every .csv file in dir.
func DirHash(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	h := md5.New()
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s, %d, %d\n", name, info.Size(), info.ModTime().UnixNano())
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func snapshotFile(cacheDir, hash string) string {
	return filepath.Join(cacheDir, snapshotPrefix+hash+".snap")
}

// LoadSnapshot populates the store from the snapshot matching the
// current content hash of csvDir. Returns false when no matching
// snapshot exists.
func (s *Store) LoadSnapshot(cacheDir, csvDir string) (bool, error) {
	hash, err := DirHash(csvDir)
	if err != nil {
		return false, err
	}

	f, err := os.Open(snapshotFile(cacheDir, hash))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	var payload map[string]*Series
	if err := gob.NewDecoder(f).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode snapshot: %w", err)
	}

	for _, sr := range payload {
		sr.reindex()
		s.put(sr)
	}

	s.log.Infow("loaded price snapshot", "tickers", len(payload), "hash", hash)
	return true, nil
}

// SaveSnapshot writes the snapshot for the current hash of csvDir and
// removes stale snapshots left over from previous data sets.
func (s *Store) SaveSnapshot(cacheDir, csvDir string) error {
	hash, err := DirHash(csvDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return err
	}
	target := filepath.Base(snapshotFile(cacheDir, hash))
	for _, e := range entries {
		if e.Name() != target && strings.HasPrefix(e.Name(), snapshotPrefix) && strings.HasSuffix(e.Name(), ".snap") {
			if err := os.Remove(filepath.Join(cacheDir, e.Name())); err != nil {
				return err
			}
		}
	}

	s.mu.Lock()
	payload := make(map[string]*Series, len(s.series))
	for t, sr := range s.series {
		payload[t] = sr
	}
	s.mu.Unlock()

	f, err := os.Create(snapshotFile(cacheDir, hash))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(payload); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	s.log.Infow("saved price snapshot", "tickers", len(payload), "hash", hash)
	return nil
}

// EnsureSnapshot loads a fresh snapshot when one exists, otherwise
// preloads every CSV in csvDir and saves a new snapshot.
func (s *Store) EnsureSnapshot(ctx context.Context, cacheDir, csvDir string, workers int) error {
	ok, err := s.LoadSnapshot(cacheDir, csvDir)
	if err != nil || ok {
		return err
	}

	entries, err := os.ReadDir(csvDir)
	if err != nil {
		return err
	}

	var tickers []string
	for _, e := range entries {
		if name, found := strings.CutSuffix(e.Name(), ".csv"); found {
			tickers = append(tickers, name)
		}
	}

	s.log.Infow("price snapshot missing or outdated, rebuilding", "tickers", len(tickers))
	if err := s.Preload(ctx, tickers, workers); err != nil {
		return err
	}
	return s.SaveSnapshot(cacheDir, csvDir)
}
