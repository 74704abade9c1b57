package hmacauth

import (
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"go.velum.dev/hmacauth/pkg/sig"
)

// Option is a function that can be passed to New to configure the Auth.
type Option func(a *Auth)

// WithAlgorithm configures the keyed-hash algorithm, overriding the
// default HMAC-SHA256.
func WithAlgorithm(alg sig.Algorithm) Option {
	return func(a *Auth) {
		a.alg = alg
	}
}

// WithEncoding configures the wire encoding for signature header values,
// overriding the default lowercase hex. The one configured encoding is
// used on both the read and the write path.
func WithEncoding(enc sig.Encoding) Option {
	return func(a *Auth) {
		a.enc = enc
	}
}

// WithRequestCanonicalization configures which request bytes the inbound
// signature covers, overriding the default body-only scheme.
func WithRequestCanonicalization(c sig.Canonicalization) Option {
	return func(a *Auth) {
		a.canon = c
	}
}

// WithLogger configures the logger used for internal telemetry, such as
// the distinct reason behind a rejection. If not specified nothing is
// logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Auth) {
		a.logger = logger
	}
}

// WithClock configures the Auth to use the specified clock.
//
// This is useful for testing with a mocked clock, if not
// specified a real clock will be used.
func WithClock(clock clock.Clock) Option {
	return func(a *Auth) {
		a.clock = clock
	}
}

// WithRejectStatus configures the status code for rejection responses,
// overriding the default 401.
func WithRejectStatus(status int) Option {
	return func(a *Auth) {
		a.status = status
	}
}

// WithSignRejections configures whether the verifier's own rejection
// responses carry a signature. They do by default, so that even an
// error body is verifiable by the caller.
func WithSignRejections(sign bool) Option {
	return func(a *Auth) {
		a.signRej = sign
	}
}
