package store

import (
	"bytes"
	"sync"

	"github.com/glazepal/glazepal/internal/domain"
)

// Key layout:
//
//	rec:{kind}:{id}                       JSON attributes of a record
//	link:{kind}:{id}:{label}:{target}     one side of an edge (empty value)
//
// Every edge is written under both endpoints so either side can be
// scanned with a prefix iterator.
const (
	recordPrefix = "rec:"
	linkPrefix   = "link:"
	keySep       = ':'
)

// keyPool provides reusable byte slices for building lookup keys.
var keyPool = sync.Pool{
	New: func() any {
		// rec: + kind + id (36 for a UUID) and the link form both fit.
		return make([]byte, 0, 160)
	},
}

// buildRecordKey constructs a record key using a pooled buffer.
// Callers MUST call releaseKey when done. Only use pooled keys for reads:
// badger retains keys passed to txn.Set and txn.Delete until commit.
//
// Usage:
//
//	key := buildRecordKey(domain.KindGlazes, glazeID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildRecordKey(kind domain.Kind, id string) []byte {
	buf, _ := keyPool.Get().([]byte)
	return appendRecordKey(buf[:0], kind, id)
}

// releaseKey returns a key buffer to the pool for reuse.
func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}

// recordKey allocates a record key that is safe to hand to a write.
func recordKey(kind domain.Kind, id string) []byte {
	return appendRecordKey(make([]byte, 0, len(recordPrefix)+len(kind)+len(id)+1), kind, id)
}

func appendRecordKey(buf []byte, kind domain.Kind, id string) []byte {
	buf = append(buf, recordPrefix...)
	buf = append(buf, kind...)
	buf = append(buf, keySep)
	return append(buf, id...)
}

// kindPrefix is the scan prefix for every record of kind.
func kindPrefix(kind domain.Kind) []byte {
	return []byte(recordPrefix + string(kind) + string(keySep))
}

// linkKey allocates the key for one side of an edge.
func linkKey(kind domain.Kind, id, label, target string) []byte {
	buf := make([]byte, 0, len(linkPrefix)+len(kind)+len(id)+len(label)+len(target)+3)
	buf = append(buf, linkPrefix...)
	buf = append(buf, kind...)
	buf = append(buf, keySep)
	buf = append(buf, id...)
	buf = append(buf, keySep)
	buf = append(buf, label...)
	buf = append(buf, keySep)
	return append(buf, target...)
}

// linkScanPrefix is the prefix of every edge leaving kind/id. With a
// label it narrows to that relation.
func linkScanPrefix(kind domain.Kind, id, label string) []byte {
	s := linkPrefix + string(kind) + string(keySep) + id + string(keySep)
	if label != "" {
		s += label + string(keySep)
	}
	return []byte(s)
}

// parseLinkKey splits the label and target out of an edge key that
// starts with linkScanPrefix(kind, id, "").
func parseLinkKey(key, prefix []byte) (label, target string, ok bool) {
	rest := key[len(prefix):]
	i := bytes.IndexByte(rest, keySep)
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return string(rest[:i]), string(rest[i+1:]), true
}

// parseRecordID returns the id part of a record key under prefix.
func parseRecordID(key, prefix []byte) string {
	return string(key[len(prefix):])
}
