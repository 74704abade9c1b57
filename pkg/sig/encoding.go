package sig

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Encoding is the textual representation used to carry signature bytes
// inside an HTTP header. The same encoding must be used on both the read
// and the write path of a deployment; mixing the two is a compatibility
// error.
type Encoding int

const (
	// Hex encodes signatures as lowercase hexadecimal (the default).
	Hex Encoding = iota
	// Base64 encodes signatures using standard base64.
	Base64
)

func (e Encoding) String() string {
	if e == Base64 {
		return "base64"
	}
	return "hex"
}

// EncodeToString returns the wire form of a raw signature.
func (e Encoding) EncodeToString(b []byte) string {
	if e == Base64 {
		return base64.StdEncoding.EncodeToString(b)
	}
	return hex.EncodeToString(b)
}

// DecodeString parses a wire-form signature back into raw bytes. A value
// that is not valid under the configured encoding is reported as
// malformed before any comparison is attempted.
func (e Encoding) DecodeString(s string) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if e == Base64 {
		b, err = base64.StdEncoding.DecodeString(s)
	} else {
		b, err = hex.DecodeString(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	return b, nil
}
