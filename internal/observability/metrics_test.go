package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDatabaseMetricsTrackQuery(t *testing.T) {
	m := NewDatabaseMetrics(nil)

	before := testutil.CollectAndCount(DatabaseQueryLatency)
	done := m.TrackQuery("List", "blogs")
	done()
	after := testutil.CollectAndCount(DatabaseQueryLatency)

	assert.Greater(t, after, 0)
	assert.GreaterOrEqual(t, after, before)
}
