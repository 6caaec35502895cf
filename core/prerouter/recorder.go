package prerouter

import (
	"net/http"
	"time"

	"github.com/caasmo/phtunnel/core"
)

type Recorder struct {
	app *core.App
}

func NewRecorder(app *core.App) *Recorder {
	return &Recorder{
		app: app,
	}
}

// Execute installs the shared core.ResponseRecorder. It must be the first
// middleware of the chain.
func (rc *Recorder) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &core.ResponseRecorder{
			ResponseWriter: w,
			Status:         http.StatusOK,
			StartTime:      time.Now(),
		}
		next.ServeHTTP(recorder, r)
	})
}
