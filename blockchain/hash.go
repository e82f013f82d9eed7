package blockchain

import (
	"crypto/sha256"
	"hash"
)

// payloadHasher streams each transaction's canonical bytes into a
// single SHA-256 digest (§4.7.2 "feed getBytes(trs) into a streaming
// SHA-256"), avoiding a concatenate-then-hash buffer over the whole
// block.
type payloadHasher struct {
	h hash.Hash
}

func newPayloadHasher() *payloadHasher {
	return &payloadHasher{h: sha256.New()}
}

func (p *payloadHasher) Write(b []byte) {
	p.h.Write(b)
}

func (p *payloadHasher) Sum() []byte {
	return p.h.Sum(nil)
}
