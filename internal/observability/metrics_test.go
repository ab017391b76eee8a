package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_RegisterMetrics_Idempotent(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(copyTransitions.WithLabelValues("reserve", "available", "on_loan"))
	RecordTransition("reserve", "available", "on_loan")
	RecordConflict("reserve")
	RecordHTTPRequest(http.MethodGet, "/health", http.StatusOK, 12*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(copyTransitions.WithLabelValues("reserve", "available", "on_loan")))
}

func Test_RequestMetrics_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestMetrics())
	r.GET("/api/copies/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	counter := httpRequests.WithLabelValues(http.MethodGet, "/api/copies/:id", "204")
	before := testutil.ToFloat64(counter)
	unmatched := httpRequests.WithLabelValues(http.MethodGet, "unmatched", "404")
	beforeUnmatched := testutil.ToFloat64(unmatched)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/copies/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/copies/2", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, beforeUnmatched+1, testutil.ToFloat64(unmatched))
}
