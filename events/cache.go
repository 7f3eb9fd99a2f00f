package events

import (
	"crypto/md5"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
)

// Validated events are cached alongside the validator counters, keyed
// by a hash of the source file. Since validation consumed the counters
// that the final report prints, they must travel with the buckets.

type cachePayload struct {
	Hash     string
	Buckets  Buckets
	Counters Counters
}

// FileHash hashes a file's size and mtime, salted (the same events
// file validated against a different bar source yields different
// buckets).
func FileHash(path, salt string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	h := md5.New()
	fmt.Fprintf(h, "%d, %d", info.Size(), info.ModTime().UnixNano())
	if salt != "" {
		h.Write([]byte(salt))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// LoadCache returns the cached buckets and counters when the cache
// file exists and matches the hash.
func LoadCache(path, hash string) (Buckets, Counters, bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, Counters{}, false, nil
	}
	if err != nil {
		return nil, Counters{}, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := gob.NewDecoder(f).Decode(&payload); err != nil {
		return nil, Counters{}, false, fmt.Errorf("decode events cache: %w", err)
	}
	if payload.Hash != hash || payload.Buckets == nil {
		return nil, Counters{}, false, nil
	}

	return payload.Buckets, payload.Counters, true, nil
}

// SaveCache persists the buckets and counters under the given hash.
func SaveCache(path, hash string, b Buckets, c Counters) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	payload := cachePayload{Hash: hash, Buckets: b, Counters: c}
	if err := gob.NewEncoder(f).Encode(payload); err != nil {
		return fmt.Errorf("encode events cache: %w", err)
	}
	return nil
}
