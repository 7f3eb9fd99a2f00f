// Package id issues the run identifiers every journal row is keyed by.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// generator hands out ULIDs with monotonic intra-millisecond ordering,
// so runs started in a burst still sort by creation in the journal.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var runIDs = newGenerator()

func newGenerator() *generator {
	var seed int64
	if err := binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed); err != nil || seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

func (g *generator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy).String()
}

// New returns a fresh run id. Two backtests over identical inputs get
// distinct ids; everything else about their results may match.
func New() string { return runIDs.next() }
