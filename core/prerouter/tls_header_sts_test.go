package prerouter

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caasmo/phtunnel/core"
)

func TestTLSHeaderSTS(t *testing.T) {
	hsts := core.HeadersTls["Strict-Transport-Security"]

	testCases := []struct {
		name       string
		target     string
		tls        bool
		status     int
		wantHeader string
	}{
		{
			name:       "Case: relayed ingest over TLS",
			target:     "/ingest/e/?token=phc_ok",
			tls:        true,
			status:     http.StatusOK,
			wantHeader: hsts,
		},
		{
			name:       "Case: blocked ingest over TLS",
			target:     "/ingest/e/?token=phc_blocked",
			tls:        true,
			status:     http.StatusForbidden,
			wantHeader: hsts,
		},
		{
			name:       "Case: unauthorized admin call over TLS",
			target:     "/admin/identifiers",
			tls:        true,
			status:     http.StatusUnauthorized,
			wantHeader: hsts,
		},
		{
			name:   "Case: plain http health check",
			target: "/health",
			status: http.StatusOK,
		},
		{
			name:   "Case: plain http ingest",
			target: "/ingest/e/?token=phc_ok",
			status: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			handler := NewRecorder(&core.App{}).Execute(NewTLSHeaderSTS().Execute(next))

			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.tls {
				req.TLS = &tls.ConnectionState{}
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, rr.Code)
			}
			if got := rr.Header().Get("Strict-Transport-Security"); got != tc.wantHeader {
				t.Errorf("expected Strict-Transport-Security %q, got %q", tc.wantHeader, got)
			}
		})
	}
}
