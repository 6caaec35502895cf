package core

import (
	"context"
	"io"
	"net/http"
	"strings"
)

const relayChunkSize = 32 * 1024

// forwardedHeaders are the only inbound headers relayed upstream. Anything
// else, the admin Authorization header included, stays at the gateway.
var forwardedHeaders = []string{
	"Content-Type",
	"User-Agent",
	"Accept",
	"Accept-Encoding",
}

// hopHeaders are connection scoped and never copied from the upstream
// response (RFC 9110, section 7.6.1).
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Proxy-Connection":    {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// Outbound describes one request to an upstream host.
type Outbound struct {
	TargetHost string
	Method     string
	Path       string // escaped path
	RawQuery   string
	Header     http.Header
	// Body is sent only for POST. ContentLength <= 0 means unknown.
	Body          io.Reader
	ContentLength int64
}

// URL returns https://{TargetHost}{Path}[?RawQuery].
func (o Outbound) URL() string {
	var b strings.Builder
	b.WriteString("https://")
	b.WriteString(o.TargetHost)
	b.WriteString(o.Path)
	if o.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(o.RawQuery)
	}
	return b.String()
}

// Forwarder issues outbound requests. It performs no retries and adds no
// timeout beyond the request context.
type Forwarder struct {
	client *http.Client
}

func NewForwarder(client *http.Client) *Forwarder {
	if client == nil {
		client = http.DefaultClient
	}
	return &Forwarder{client: client}
}

// Forward sends o upstream. The caller must close the response body.
func (f *Forwarder) Forward(ctx context.Context, o Outbound) (*http.Response, error) {
	var body io.Reader
	if o.Method == http.MethodPost && o.Body != nil {
		body = o.Body
	}

	req, err := http.NewRequestWithContext(ctx, o.Method, o.URL(), body)
	if err != nil {
		return nil, err
	}
	if body != nil && req.ContentLength == 0 && o.ContentLength > 0 {
		req.ContentLength = o.ContentLength
	}

	for _, k := range forwardedHeaders {
		if v := o.Header.Get(k); v != "" {
			req.Header.Set(k, v)
		}
	}

	return f.client.Do(req)
}

// relayResponse copies status, end-to-end headers and body of resp to w.
// CORS headers already set by the gateway are kept. Each chunk is flushed
// so that streamed upstream responses are not held back.
func relayResponse(w http.ResponseWriter, resp *http.Response) (int64, error) {
	dst := w.Header()
	for k, vv := range resp.Header {
		if _, hop := hopHeaders[k]; hop {
			continue
		}
		if strings.HasPrefix(k, "Access-Control-") && dst.Get(k) != "" {
			continue
		}
		dst.Del(k)
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	rc := http.NewResponseController(w)
	buf := make([]byte, relayChunkSize)
	var written int64
	for {
		nr, rerr := resp.Body.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			// ErrNotSupported for writers that cannot flush
			_ = rc.Flush()
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
