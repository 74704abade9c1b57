package httpmw

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"go.velum.dev/hmacauth"
	"go.velum.dev/hmacauth/internal/jsonerr"
)

// VerifyRequests returns middleware that admits a request to next only
// when the signature header matches the request body. The body is read
// fully up front and an identical reader is handed to next, so handlers
// observe exactly the bytes that were verified.
//
// Every rejection produces the same status and body regardless of
// whether the header was missing, malformed, or wrong; the distinct
// reason is recorded on the Auth's logger only. When the Auth is
// configured to sign rejections (the default), the rejection body is
// signed the same way any handler response would be.
func VerifyRequests(auth *hmacauth.Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := auth.Logger()
			start := auth.Clock().Now()

			body, err := readBody(r)
			if err != nil {
				logger.Error().Err(err).Msg("error while reading request body")
				serverError(w, auth)
				return
			}

			decision := auth.VerifyRequest(r.Method, r.URL.Path, r.Header, body)
			if !decision.Admitted() {
				logger.Warn().
					AnErr("reason", decision.Reason()).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Dur("elapsed", auth.Clock().Since(start)).
					Msg("request signature rejected")
				reject(w, auth)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// SignResponses returns middleware that signs the response body produced
// by next. The body is buffered until next returns, then the signature
// header is set and status and body are written out unchanged. Error
// responses from next are signed like any other, so even a 4xx/5xx body
// is verifiable by the caller.
func SignResponses(auth *hmacauth.Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &signingWriter{ResponseWriter: w, auth: auth}
			next.ServeHTTP(sw, r)
			sw.finish()
		})
	}
}

// Middleware combines the two stages: requests are verified before next
// runs, and every admitted response carries a body signature on its way
// out. Rejections are signed inline by the verifier according to the
// Auth's rejection-signing policy.
func Middleware(auth *hmacauth.Auth) func(http.Handler) http.Handler {
	sign := SignResponses(auth)
	verify := VerifyRequests(auth)
	return func(next http.Handler) http.Handler {
		return verify(sign(next))
	}
}

func reject(w http.ResponseWriter, auth *hmacauth.Auth) {
	if auth.SignRejections() {
		sw := &signingWriter{ResponseWriter: w, auth: auth}
		jsonerr.Reject(sw, auth.RejectStatus())
		sw.finish()
		return
	}
	jsonerr.Reject(w, auth.RejectStatus())
}

var errBodyRead = errors.New("unable to read request body")

// serverError reports a failure of the middleware itself, such as the
// body not being readable. The response is signed like any other so the
// caller never receives an unauthenticated body; the message is fixed
// and reveals nothing about the underlying error.
func serverError(w http.ResponseWriter, auth *hmacauth.Auth) {
	sw := &signingWriter{ResponseWriter: w, auth: auth}
	jsonerr.Error(sw, errBodyRead, http.StatusInternalServerError)
	sw.finish()
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer func() { _ = r.Body.Close() }()
	return io.ReadAll(r.Body)
}

// signingWriter buffers the response so the signature can be computed
// over the complete body before any bytes reach the client.
type signingWriter struct {
	http.ResponseWriter
	auth     *hmacauth.Auth
	buf      bytes.Buffer
	status   int
	finished bool
}

func (sw *signingWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}
}

func (sw *signingWriter) Write(b []byte) (int, error) {
	return sw.buf.Write(b)
}

// finish sets the signature header and flushes status and body to the
// underlying writer. It is a no-op after the first call.
func (sw *signingWriter) finish() {
	if sw.finished {
		return
	}
	sw.finished = true

	sw.Header().Set(sw.auth.Header(), sw.auth.Sign(sw.buf.Bytes()))
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	sw.ResponseWriter.WriteHeader(sw.status)
	if _, err := sw.ResponseWriter.Write(sw.buf.Bytes()); err != nil {
		logger := sw.auth.Logger()
		logger.Error().Err(err).Msg("error while writing signed response")
	}
}
