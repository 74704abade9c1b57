package httpmw

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benbjohnson/clock"
	qt "github.com/frankban/quicktest"
	"go.velum.dev/hmacauth"
)

const (
	testSecret = "s3cr3t"
	testHeader = "X-Signature"
)

func newTestAuth(c *qt.C, options ...hmacauth.Option) *hmacauth.Auth {
	options = append([]hmacauth.Option{hmacauth.WithClock(clock.NewMock())}, options...)
	auth, err := hmacauth.New([]byte(testSecret), testHeader, options...)
	c.Assert(err, qt.IsNil)
	return auth
}

// signedRequest builds a request against url carrying a valid signature
// for body.
func signedRequest(c *qt.C, auth *hmacauth.Auth, url string, body []byte) *http.Request {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	c.Assert(err, qt.IsNil)
	req.Header.Set(testHeader, auth.SignRequest(http.MethodPost, req.URL.Path, body))
	return req
}

func TestAdmittedRequestReachesHandler(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	auth := newTestAuth(c)
	reqBody := []byte(`{"a":1}`)
	respBody := []byte("Hello, world!")

	var seenBody []byte
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		c.Check(err, qt.IsNil)
		seenBody = b
		_, _ = w.Write(respBody)
	})

	srv := httptest.NewServer(Middleware(auth)(handler))
	defer srv.Close()

	resp, err := http.DefaultClient.Do(signedRequest(c, auth, srv.URL, reqBody))
	c.Assert(err, qt.IsNil)
	defer func() { _ = resp.Body.Close() }()

	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(bytes.Equal(seenBody, reqBody), qt.Equals, true,
		qt.Commentf("handler must observe exactly the verified bytes"))

	got, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	c.Assert(bytes.Equal(got, respBody), qt.Equals, true)

	// The response header decodes to exactly the MAC of the body sent.
	c.Assert(resp.Header.Get(testHeader), qt.Equals, auth.Sign(respBody))
}

func TestRejectionIsUniform(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	auth := newTestAuth(c)
	handlerRuns := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRuns++
	})

	srv := httptest.NewServer(Middleware(auth)(handler))
	defer srv.Close()

	body := []byte(`{"a":1}`)
	wrong := auth.Sign([]byte("something else"))

	// Missing, malformed, and wrong signatures must be observably
	// identical from the outside.
	var statuses []int
	var bodies []string
	for _, headerValue := range []string{"", "123", wrong} {
		req, err := http.NewRequest(http.MethodPost, srv.URL, bytes.NewReader(body))
		c.Assert(err, qt.IsNil)
		if headerValue != "" {
			req.Header.Set(testHeader, headerValue)
		}

		resp, err := http.DefaultClient.Do(req)
		c.Assert(err, qt.IsNil)
		b, err := io.ReadAll(resp.Body)
		c.Assert(err, qt.IsNil)
		_ = resp.Body.Close()

		statuses = append(statuses, resp.StatusCode)
		bodies = append(bodies, string(b))
	}

	c.Assert(handlerRuns, qt.Equals, 0, qt.Commentf("a rejected request must never reach the handler"))
	c.Assert(statuses[0], qt.Equals, http.StatusUnauthorized)
	c.Assert(statuses[1], qt.Equals, statuses[0])
	c.Assert(statuses[2], qt.Equals, statuses[0])
	c.Assert(bodies[1], qt.Equals, bodies[0])
	c.Assert(bodies[2], qt.Equals, bodies[0])
}

// Pins the policy that the verifier's own rejection response is signed,
// and that the option turns it off.
func TestRejectionResponseSigned(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	auth := newTestAuth(c)
	srv := httptest.NewServer(Middleware(auth)(handler))
	defer srv.Close()

	resp, err := http.DefaultClient.Do(mustRequest(c, srv.URL, nil))
	c.Assert(err, qt.IsNil)
	rejBody, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	_ = resp.Body.Close()

	c.Assert(resp.StatusCode, qt.Equals, http.StatusUnauthorized)
	c.Assert(resp.Header.Get(testHeader), qt.Equals, auth.Sign(rejBody))

	unsigned := newTestAuth(c, hmacauth.WithSignRejections(false))
	srv2 := httptest.NewServer(Middleware(unsigned)(handler))
	defer srv2.Close()

	resp, err = http.DefaultClient.Do(mustRequest(c, srv2.URL, nil))
	c.Assert(err, qt.IsNil)
	_ = resp.Body.Close()
	c.Assert(resp.Header.Get(testHeader), qt.Equals, "")
}

func TestHandlerErrorResponseSigned(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	auth := newTestAuth(c)
	errBody := []byte("downstream blew up")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write(errBody)
	})

	srv := httptest.NewServer(Middleware(auth)(handler))
	defer srv.Close()

	resp, err := http.DefaultClient.Do(signedRequest(c, auth, srv.URL, nil))
	c.Assert(err, qt.IsNil)
	got, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	_ = resp.Body.Close()

	c.Assert(resp.StatusCode, qt.Equals, http.StatusServiceUnavailable)
	c.Assert(bytes.Equal(got, errBody), qt.Equals, true)
	c.Assert(resp.Header.Get(testHeader), qt.Equals, auth.Sign(errBody))
}

func TestEmptyBodyAdmitted(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	auth := newTestAuth(c)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(Middleware(auth)(handler))
	defer srv.Close()

	resp, err := http.DefaultClient.Do(signedRequest(c, auth, srv.URL, nil))
	c.Assert(err, qt.IsNil)
	_ = resp.Body.Close()

	c.Assert(resp.StatusCode, qt.Equals, http.StatusNoContent)
	c.Assert(resp.Header.Get(testHeader), qt.Equals, auth.Sign(nil))
}

func TestRejectStatusOption(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	auth := newTestAuth(c, hmacauth.WithRejectStatus(http.StatusForbidden))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	srv := httptest.NewServer(Middleware(auth)(handler))
	defer srv.Close()

	resp, err := http.DefaultClient.Do(mustRequest(c, srv.URL, nil))
	c.Assert(err, qt.IsNil)
	_ = resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusForbidden)
}

func mustRequest(c *qt.C, url string, body []byte) *http.Request {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	c.Assert(err, qt.IsNil)
	return req
}

type unreadableBody struct{}

func (unreadableBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (unreadableBody) Close() error             { return nil }

// An unreadable request body is a failure of the middleware's
// collaborator, not of the signature: the handler must not run, and the
// generic 500 that comes back is signed like any other response while
// its body stays fixed regardless of the underlying error.
func TestUnreadableBodyIsSignedServerError(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	auth := newTestAuth(c)
	handlerRuns := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRuns++
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Body = unreadableBody{}
	rec := httptest.NewRecorder()

	Middleware(auth)(handler).ServeHTTP(rec, req)

	c.Assert(handlerRuns, qt.Equals, 0)
	c.Assert(rec.Code, qt.Equals, http.StatusInternalServerError)
	c.Assert(rec.Body.String(), qt.Contains, "unable to read request body")
	c.Assert(rec.Body.String(), qt.Not(qt.Contains), "connection reset")
	c.Assert(rec.Header().Get(testHeader), qt.Equals, auth.Sign(rec.Body.Bytes()))
}

type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header       { return w.header }
func (w *brokenWriter) WriteHeader(int)           {}
func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("client went away") }

// A write failure on the underlying connection is logged, not
// propagated; the signature header is computed before the first write
// so it is complete even when the flush fails.
func TestSignResponsesSurvivesWriteFailure(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	auth := newTestAuth(c)
	respBody := []byte("Hello, world!")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(respBody)
	})

	w := &brokenWriter{header: make(http.Header)}
	SignResponses(auth)(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	c.Assert(w.header.Get(testHeader), qt.Equals, auth.Sign(respBody))
}
