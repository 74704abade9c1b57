package sig

// Canonicalization selects the bytes a request signature covers.
type Canonicalization int

const (
	// BodyOnly signs the raw request body bytes (the default).
	BodyOnly Canonicalization = iota
	// MethodPathBody signs the concatenation of the MACs of the request
	// method, the request path, and the body:
	//
	//	MAC(secret, method) || MAC(secret, path) || MAC(secret, body)
	//
	// Response signatures remain body-only in either mode.
	MethodPathBody
)

func (c Canonicalization) String() string {
	if c == MethodPathBody {
		return "method-path-body"
	}
	return "body"
}

// Canonical returns the message bytes a request signature is computed
// over. The bytes fed in here must be byte-identical to those the
// downstream handler will observe; any re-encoding between capture and
// signing breaks the protocol.
func Canonical(c Canonicalization, a Algorithm, secret Secret, method, path string, body []byte) []byte {
	if c == BodyOnly {
		return body
	}
	msg := make([]byte, 0, 3*a.Size())
	msg = append(msg, Compute(a, secret, []byte(method))...)
	msg = append(msg, Compute(a, secret, []byte(path))...)
	msg = append(msg, Compute(a, secret, body)...)
	return msg
}
