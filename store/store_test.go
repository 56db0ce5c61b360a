package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestActualOnlyFilter(t *testing.T) {
	filter := ActualOnlyFilter()

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok, "filter must be an $or of clauses")
	require.Len(t, or, 2)

	eq := or[0].(bson.M)
	assert.Equal(t, false, eq["isPredicted"])

	absent := or[1].(bson.M)
	exists := absent["isPredicted"].(bson.M)
	assert.Equal(t, false, exists["$exists"])
}

func TestBackoffDelayBounds(t *testing.T) {
	base := 500 * time.Millisecond

	for attempt := 0; attempt < 3; attempt++ {
		expected := float64(base) * float64(int64(1)<<uint(attempt))
		lo := time.Duration(expected * 0.75)
		hi := time.Duration(expected * 1.25)

		// Jitter is random; sample a few times.
		for i := 0; i < 50; i++ {
			d := backoffDelay(base, attempt)
			assert.GreaterOrEqual(t, d, lo, "attempt %d", attempt)
			assert.LessOrEqual(t, d, hi, "attempt %d", attempt)
		}
	}
}

func TestBackoffDelayGrows(t *testing.T) {
	base := 500 * time.Millisecond
	// Even with maximal jitter on the earlier attempt, attempt 2 outlasts
	// attempt 0.
	assert.Greater(t, backoffDelay(base, 2), backoffDelay(base, 0))
}
