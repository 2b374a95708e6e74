// internal/history/recorder_test.go
package history

import (
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecorder() *Recorder {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRecorder(nil, DefaultQueueName, logger)
}

func TestRecordCapsAtMaxEntries(t *testing.T) {
	rec := testRecorder()
	for i := 0; i < maxEntries+20; i++ {
		rec.Record("1.2.3.4", fmt.Sprintf("action_%d", i), "/websocket", nil)
	}
	assert.Equal(t, maxEntries, rec.Len())

	recent := rec.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, fmt.Sprintf("action_%d", maxEntries+19), recent[0].Action,
		"eviction drops the oldest entries, not the newest")
}

func TestRecentIsMostRecentFirst(t *testing.T) {
	rec := testRecorder()
	rec.Record("1.2.3.4", "first", "/health", nil)
	rec.Record("1.2.3.4", "second", "/health", nil)
	rec.Record("1.2.3.4", "third", "/health", nil)

	recent := rec.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Action)
	assert.Equal(t, "second", recent[1].Action)
}

func TestByIPFilters(t *testing.T) {
	rec := testRecorder()
	rec.Record("1.1.1.1", "a", "/health", nil)
	rec.Record("2.2.2.2", "b", "/health", nil)
	rec.Record("1.1.1.1", "c", "/health", map[string]interface{}{"room_code": "ABC123"})

	got := rec.ByIP("1.1.1.1", 25)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Action)
	assert.Equal(t, "ABC123", got[0].Details["room_code"])
	assert.Equal(t, "a", got[1].Action)
}
