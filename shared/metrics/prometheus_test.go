package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_Singleton(t *testing.T) {
	assert.Same(t, NewMetrics(), NewMetrics())
}

func TestRecordAPICall(t *testing.T) {
	m := NewMetrics()
	before := testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("GetTenants", "error"))

	m.RecordAPICall("GetTenants", 10*time.Millisecond, errors.New("boom"))

	after := testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("GetTenants", "error"))
	assert.Equal(t, before+1, after)
}

func TestRecordOnboarding(t *testing.T) {
	m := NewMetrics()
	before := testutil.ToFloat64(m.onboardingTotal.WithLabelValues("success"))

	m.RecordOnboarding(nil)

	assert.Equal(t, before+1, testutil.ToFloat64(m.onboardingTotal.WithLabelValues("success")))
}
