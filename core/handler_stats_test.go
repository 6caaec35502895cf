package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/caasmo/phtunnel/topk"
)

func TestStatsHandler(t *testing.T) {
	env := newTestEnv(t, seededData(), nil)
	env.app.SetSketch(topk.New(topk.SketchParams{K: 5, WindowSize: 10, Width: 256, Depth: 3, TickSize: 100}))

	for i := 0; i < 4; i++ {
		env.do(httptest.NewRequest(http.MethodGet, "/ingest/e/?token=phc_a", nil))
	}
	for i := 0; i < 2; i++ {
		env.do(httptest.NewRequest(http.MethodGet, "/ingest/e/?token=phc_other", nil))
	}

	rr := env.do(adminRequest(http.MethodGet, "/admin/stats", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var got statsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	want := statsResponse{
		Window: 1000,
		Identifiers: []StatsItem{
			{Identifier: "phc_a", Count: 4, Blocked: true, Label: "first"},
			{Identifier: "phc_other", Count: 2},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsHandler_Deactivated(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rr := env.do(adminRequest(http.MethodGet, "/admin/stats", ""))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404 without a sketch, got %d", rr.Code)
	}
	if rr.Body.String() != `{"error":"Not found"}` {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}
