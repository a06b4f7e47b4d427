package badger

import (
	"encoding/binary"

	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/storage"
)

// Key prefixes for different data types
const (
	vectorPrefix   = "vec:"
	decisionPrefix = "decrec:"
	decisionIDSeq  = "decrecseq"
)

// makeVectorKey generates a key for a cached vector by content ID.
// Format: prefix + varint ID
func makeVectorKey(id core.ID) []byte {
	return append([]byte(vectorPrefix), storage.MarshalID(id)...)
}

// makeDecisionKey generates a composite key for a decision row.
// Format: prefix:sessionID:seq
func makeDecisionKey(sessionID string, seq uint64) []byte {
	prefix := makeSessionPrefix(sessionID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort follows append order
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeSessionPrefix generates the partial key shared by a session's rows.
// Format: prefix:sessionID:
func makeSessionPrefix(sessionID string) []byte {
	buf := make([]byte, 0, len(decisionPrefix)+len(sessionID)+1)
	buf = append(buf, decisionPrefix...)
	buf = append(buf, sessionID...)
	return append(buf, ':')
}
