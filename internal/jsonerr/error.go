package jsonerr

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Reject writes the uniform rejection response using JSON encoding.
// Every rejection carries the same status, code, and message no matter
// which validation step failed, so the body reveals nothing about why a
// signature was refused.
func Reject(w http.ResponseWriter, code int) {
	write(w, code, response{
		Code:    http.StatusText(code),
		Message: "authentication failed",
	})
}

// Error writes structured error information to w using JSON encoding.
// The given status code is used if it is non-zero, otherwise it
// is set to 500.
func Error(w http.ResponseWriter, err error, code int) {
	if code == 0 {
		code = http.StatusInternalServerError
	}
	write(w, code, response{
		Code:    http.StatusText(code),
		Message: err.Error(),
	})
}

func write(w http.ResponseWriter, code int, r response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	data, _ := json.MarshalIndent(&r, "", "  ")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
