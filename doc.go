// Package hmacauth authenticates HTTP message bodies with a keyed MAC.
//
// Two stages share one immutable [Auth] configuration: a verifier that
// gates admission to a handler on the signature carried in a request
// header matching the request body, and a signer that attaches the
// matching signature to every response body on its way out. The core is
// a pair of pure functions, [Auth.Verify] and [Auth.Sign]; everything
// HTTP-shaped lives in thin adapter packages.
//
// # Overview of Packages
//
//   - hmacauth - The configuration handle and the pure sign/verify core
//   - pkg/sig - Signing primitives: algorithms, wire encodings, the
//     constant-time comparison, and request canonicalization
//   - httpmw - net/http middleware adapting the two stages to a server
//     handler chain
//   - transport - an http.RoundTripper signing outbound request bodies
//     and verifying signed response bodies
package hmacauth
