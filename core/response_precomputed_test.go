package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPrecomputedResponses(t *testing.T) {
	testCases := []struct {
		name       string
		resp       jsonResponse
		wantStatus int
		wantBody   string
	}{
		{"Case: unauthorized", errorUnauthorized, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"Case: invalid body", errorInvalidRequestBody, http.StatusBadRequest, `{"error":"Invalid request body"}`},
		{"Case: missing identifier", errorMissingIdentifier, http.StatusBadRequest, `{"error":"Missing identifier"}`},
		{"Case: missing label", errorMissingLabel, http.StatusBadRequest, `{"error":"Missing label"}`},
		{"Case: missing domain", errorMissingDomain, http.StatusBadRequest, `{"error":"Missing domain"}`},
		{"Case: internal", errorInternal, http.StatusInternalServerError, `{"error":"Internal server error"}`},
		{"Case: ok", okTrue, http.StatusOK, `{"ok":true}`},
		{"Case: created", createdTrue, http.StatusCreated, `{"ok":true}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.resp.status != tc.wantStatus {
				t.Errorf("status = %d, want %d", tc.resp.status, tc.wantStatus)
			}
			if string(tc.resp.body) != tc.wantBody {
				t.Errorf("body = %s, want %s", tc.resp.body, tc.wantBody)
			}

			rr := httptest.NewRecorder()
			writeJsonOk(rr, tc.resp)
			if rr.Code != tc.wantStatus || rr.Body.String() != tc.wantBody {
				t.Errorf("written %d %s, want %d %s", rr.Code, rr.Body.String(), tc.wantStatus, tc.wantBody)
			}
		})
	}
}
