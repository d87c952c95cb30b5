package webclient

import (
	"errors"
	"net/http"
	"time"
)

var (
	ErrNilRequest        = errors.New("webclient: nil request")
	ErrUnsupportedMethod = errors.New("webclient: method not supported by backend")
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request *Request
	// FinalURL is the URL after redirects; frames and origins are resolved
	// against it.
	FinalURL   string
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
