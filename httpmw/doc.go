// Package httpmw adapts the hmacauth verifier and signer stages to a
// net/http handler chain, buffering request and response bodies so both
// signatures cover the exact bytes that cross the wire.
package httpmw
