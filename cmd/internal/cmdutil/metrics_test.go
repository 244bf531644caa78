package cmdutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMetricsServer(t *testing.T) {
	h := MetricsServer(zerolog.Nop())
	for _, tc := range []struct {
		path         string
		expectedCode int
	}{
		{path: "/healthz", expectedCode: http.StatusOK},
		{path: "/metrics", expectedCode: http.StatusOK},
		{path: "/missing", expectedCode: http.StatusNotFound},
	} {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}
