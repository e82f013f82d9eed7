package types

import "crypto/ed25519"

// KeyPair is a delegate's signing identity: the Ed25519 key pair the
// block service signs generated blocks with (§4.7.1 Create's
// `keyPair` argument).
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// Sign signs msg with the key pair's private key.
func (kp KeyPair) Sign(msg []byte) []byte {
	return ed25519.Sign(kp.PrivateKey, msg)
}
