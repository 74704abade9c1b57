// Package transport provides the client side of the protocol: an
// http.RoundTripper that signs outbound request bodies and verifies the
// signature a server attaches to its response bodies.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"go.velum.dev/hmacauth"
)

// RoundTripper signs requests and verifies responses for one Auth
// configuration. It buffers bodies in memory on both directions, since
// a signature can only be computed or checked over complete bytes.
type RoundTripper struct {
	auth *hmacauth.Auth
	base http.RoundTripper
}

// New wraps base with request signing and response verification. A nil
// base uses http.DefaultTransport.
func New(auth *hmacauth.Auth, base http.RoundTripper) *RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RoundTripper{auth: auth, base: base}
}

// RoundTrip implements http.RoundTripper. The request is cloned before
// its signature header is set, per the RoundTripper contract. A
// response whose body signature is absent or wrong fails the round trip
// rather than being returned unverified.
func (t *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	nr := req.Clone(req.Context())

	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		_ = req.Body.Close()
		body = b
		nr.Body = io.NopCloser(bytes.NewReader(body))
		nr.ContentLength = int64(len(body))
	}

	// A URL like http://host has an empty Path on the client side, but
	// the server observes "/"; both sides must sign the same bytes.
	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	nr.Header.Set(t.auth.Header(), t.auth.SignRequest(req.Method, path, body))

	resp, err := t.base.RoundTrip(nr)
	if err != nil {
		return nil, err
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(respBody))

	if decision := t.auth.Verify(resp.Header, respBody); !decision.Admitted() {
		return nil, fmt.Errorf("response signature: %w", decision.Reason())
	}
	return resp, nil
}
