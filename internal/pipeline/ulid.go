package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 26 Crockford base32 characters, a 48-bit millisecond
// timestamp followed by 80 bits of entropy, so IDs sort by creation time.

var (
	idMu    sync.Mutex
	idLast  uint64
	idSeq   uint16
	idClock = time.Now
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewJobID returns a new ULID. IDs created in the same millisecond differ
// in a sequence counter stored ahead of the random bits.
func NewJobID() string {
	idMu.Lock()
	defer idMu.Unlock()

	ts := uint64(idClock().UnixMilli())
	if ts == idLast {
		idSeq++
	} else {
		idLast = ts
		idSeq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16)
	// rand.Read never returns an error; it crashes the program if the
	// system source fails.
	_, _ = rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], idSeq)
	return encodeCrockford(b)
}

// encodeCrockford writes the 128 bits as 26 five-bit digits. The first
// digit carries only three bits.
func encodeCrockford(b [16]byte) string {
	var out [26]byte
	for i := range out {
		start := i*5 - 2
		v := 0
		for pos := start; pos < start+5; pos++ {
			v <<= 1
			if pos >= 0 && b[pos/8]&(0x80>>(pos%8)) != 0 {
				v |= 1
			}
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}
