package hmacauth

import (
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"go.velum.dev/hmacauth/pkg/sig"
)

// Auth is the shared, immutable configuration for one signing domain: a
// secret, a header name, and the wire parameters agreed between the two
// sides of the protocol. It is safe for concurrent use by any number of
// in-flight requests, and several independently configured instances may
// coexist in one process.
type Auth struct {
	secret  sig.Secret
	header  string
	alg     sig.Algorithm
	enc     sig.Encoding
	canon   sig.Canonicalization
	clock   clock.Clock
	logger  zerolog.Logger
	status  int
	signRej bool
}

// New creates an Auth from a secret and the header name that carries
// signatures, applying any options. The secret must be non-empty; an
// empty secret or header name is a configuration error reported here,
// before any request is processed.
func New(secret []byte, headerName string, options ...Option) (*Auth, error) {
	if len(secret) == 0 {
		return nil, sig.ErrEmptySecret
	}
	if headerName == "" {
		return nil, sig.ErrEmptyHeader
	}

	a := &Auth{
		secret:  append(sig.Secret(nil), secret...),
		header:  headerName,
		alg:     sig.SHA256,
		enc:     sig.Hex,
		canon:   sig.BodyOnly,
		clock:   clock.New(),
		logger:  zerolog.Nop(),
		status:  http.StatusUnauthorized,
		signRej: true,
	}
	for _, option := range options {
		option(a)
	}
	return a, nil
}

// Header returns the configured signature header name. Both directions
// of the protocol read and write this one name.
func (a *Auth) Header() string { return a.header }

// RejectStatus returns the status code used for rejection responses.
func (a *Auth) RejectStatus() int { return a.status }

// SignRejections reports whether rejection responses are themselves
// signed.
func (a *Auth) SignRejections() bool { return a.signRej }

// Logger returns the internal telemetry logger. Rejection reasons go
// here and nowhere else; the wire response never distinguishes them.
func (a *Auth) Logger() zerolog.Logger { return a.logger }

// Clock returns the configured clock.
func (a *Auth) Clock() clock.Clock { return a.clock }

// Sign computes the wire-encoded signature of a body. It is what a
// response carries in the signature header, and what a body-only request
// signature must equal to be admitted.
func (a *Auth) Sign(body []byte) string {
	return a.enc.EncodeToString(sig.Compute(a.alg, a.secret, body))
}

// SignRequest computes the wire-encoded request signature for the
// configured canonicalization. With the default BodyOnly mode it is
// identical to Sign.
func (a *Auth) SignRequest(method, path string, body []byte) string {
	return a.enc.EncodeToString(sig.Compute(a.alg, a.secret,
		sig.Canonical(a.canon, a.alg, a.secret, method, path, body)))
}

// Verify checks the body-only signature carried in headers against body.
func (a *Auth) Verify(headers http.Header, body []byte) Decision {
	return a.decide(headers, body)
}

// VerifyRequest checks a request signature, honoring the configured
// request canonicalization. The body bytes passed in must be exactly
// those the downstream handler will observe.
func (a *Auth) VerifyRequest(method, path string, headers http.Header, body []byte) Decision {
	return a.decide(headers, sig.Canonical(a.canon, a.alg, a.secret, method, path, body))
}

func (a *Auth) decide(headers http.Header, msg []byte) Decision {
	value := headers.Get(a.header)
	if value == "" {
		return Decision{reason: sig.ErrMissingSignature}
	}

	supplied, err := a.enc.DecodeString(value)
	if err != nil {
		return Decision{reason: err}
	}
	if len(supplied) != a.alg.Size() {
		return Decision{reason: sig.ErrMalformedSignature}
	}

	expected := sig.Compute(a.alg, a.secret, msg)
	if !sig.Equal(expected, supplied) {
		return Decision{reason: sig.ErrInvalidSignature}
	}
	return Decision{}
}

// Decision is the outcome of verifying one request. The reason behind a
// rejection is for internal telemetry only; integrators must emit one
// uniform rejection response regardless of it.
type Decision struct {
	reason error
}

// Admitted reports whether the request may reach its handler.
func (d Decision) Admitted() bool { return d.reason == nil }

// Reason returns why the request was rejected, or nil when admitted.
func (d Decision) Reason() error { return d.reason }
