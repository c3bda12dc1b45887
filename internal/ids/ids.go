// Package ids generates the identifiers that tie a symbol, its stored
// image and its database row together.
package ids

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"
)

// NumericWidth is the payload width EAN-13 encoders expect before the
// check digit is appended.
const NumericWidth = 12

var counter atomic.Uint64

func init() {
	// Random starting offset so restarts do not replay counter values.
	counter.Store(randUint64())
}

// NewNumeric returns a 12-digit numeric identifier built from five
// clock digits, four monotonic counter digits and three digits of
// crypto/rand entropy. The counter keeps rapid sequential calls within
// one process unique; the random suffix separates concurrent processes.
// A pure wall-clock id gives neither guarantee.
func NewNumeric() string {
	second := time.Now().Unix() % 100_000
	sequence := counter.Add(1) % 10_000
	noise := randUint64() % 1_000
	return fmt.Sprintf("%05d%04d%03d", second, sequence, noise)
}

func randUint64() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; fall back
		// to the clock rather than panic in the request path.
		return uint64(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint64(b[:])
}

// NewBatch returns a sortable group identifier minted once per
// multi-unit request. It is reported to the caller and used in logs;
// individual units keep their own numeric ids.
func NewBatch() string {
	return ksuid.New().String()
}
