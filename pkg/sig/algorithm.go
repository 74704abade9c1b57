package sig

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm selects the hash used inside the keyed MAC.
type Algorithm int

const (
	// SHA256 is the default algorithm, producing 32-byte signatures.
	SHA256 Algorithm = iota
	// SHA512 produces 64-byte signatures.
	SHA512
	// SHA3256 uses SHA3-256, producing 32-byte signatures.
	SHA3256
	// BLAKE2b256 uses BLAKE2b-256, producing 32-byte signatures.
	BLAKE2b256
)

func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "hmac-sha256"
	case SHA512:
		return "hmac-sha512"
	case SHA3256:
		return "hmac-sha3-256"
	case BLAKE2b256:
		return "hmac-blake2b-256"
	default:
		return "unknown"
	}
}

// Size returns the signature width in bytes.
func (a Algorithm) Size() int {
	switch a {
	case SHA512:
		return sha512.Size
	default:
		return sha256.Size
	}
}

func (a Algorithm) hashFunc() func() hash.Hash {
	switch a {
	case SHA512:
		return sha512.New
	case SHA3256:
		return sha3.New256
	case BLAKE2b256:
		return func() hash.Hash {
			h, _ := blake2b.New256(nil)
			return h
		}
	default:
		return sha256.New
	}
}

// Compute returns the keyed MAC of msg under secret.
//
// It is a pure function: the same (secret, msg) pair always produces the
// same signature, and an empty msg is as valid as any other.
func Compute(a Algorithm, secret Secret, msg []byte) []byte {
	mac := hmac.New(a.hashFunc(), secret)
	mac.Write(msg)
	return mac.Sum(nil)
}
