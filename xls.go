package xls

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Fingerprint is a content-derived identifier for IR artifacts, used to key
// caches of compiled programs.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:8])
}

// Hash calculates the fingerprint of x.
// If tag == nil, then the hash is unkeyed.
// If tag != nil, then the hash is keyed with the tag, which separates
// fingerprint domains from one another.
func Hash(tag *Fingerprint, x []byte) (ret Fingerprint) {
	var key []byte
	if tag != nil {
		key = tag[:]
	}
	h := blake3.New(32, key)
	h.Write(x)
	h.Sum(ret[:0])
	return ret
}
