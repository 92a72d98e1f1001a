package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flightcore/internal/logging"
	"github.com/viant/flightcore/progress"
)

func TestServer_Routes(t *testing.T) {
	p := progress.New("scheduler-1", nil)
	p.Update(progress.Delta{Started: 2, Live: 2, Sleeping: 1, Slept: 1})
	srv := New(p, logging.Discard())

	testCases := []struct {
		description string
		path        string
		status      int
		check       func(t *testing.T, body []byte)
	}{
		{
			description: "health",
			path:        "/api/v1/health",
			status:      http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var h health
				require.NoError(t, json.Unmarshal(body, &h))
				assert.Equal(t, "ok", h.Status)
			},
		},
		{
			description: "progress",
			path:        "/api/v1/progress",
			status:      http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got progress.Progress
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "scheduler-1", got.SchedulerID)
				assert.Equal(t, 2, got.LiveTasks)
				assert.Equal(t, 1, got.SleepingTasks)
			},
		},
		{description: "unknown", path: "/api/v1/tasks", status: http.StatusNotFound},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, testCase.path, nil))
			assert.Equal(t, testCase.status, rec.Code)
			if testCase.check != nil {
				testCase.check(t, rec.Body.Bytes())
			}
		})
	}
}
