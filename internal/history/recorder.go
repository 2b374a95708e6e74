// internal/history/recorder.go
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// maxEntries bounds the in-memory log; the server keeps only the most recent
// actions and relies on the historian for anything older.
const maxEntries = 100

// ActionRecord is one logged player or HTTP action. The same record feeds
// the /logs endpoint and, when Redis is configured, the historian queue.
type ActionRecord struct {
	Timestamp string                 `json:"timestamp"`
	IP        string                 `json:"ip"`
	Action    string                 `json:"action"`
	Path      string                 `json:"path"`
	Details   map[string]interface{} `json:"details"`
}

// Recorder keeps a bounded in-memory action log and optionally mirrors every
// record onto a Redis queue for durable archival.
type Recorder struct {
	mu      sync.Mutex
	entries []ActionRecord

	rdb    *redis.Client
	queue  string
	logger logrus.FieldLogger
}

// NewRecorder builds a recorder. rdb may be nil, in which case records stay
// in memory only.
func NewRecorder(rdb *redis.Client, queue string, logger logrus.FieldLogger) *Recorder {
	return &Recorder{
		rdb:    rdb,
		queue:  queue,
		logger: logger,
	}
}

// Record appends an action, evicting the oldest entry past the cap, and
// mirrors it to the historian queue off the hot path.
func (r *Recorder) Record(ip, action, path string, details map[string]interface{}) {
	entry := ActionRecord{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		IP:        ip,
		Action:    action,
		Path:      path,
		Details:   details,
	}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	if len(r.entries) > maxEntries {
		r.entries = r.entries[len(r.entries)-maxEntries:]
	}
	r.mu.Unlock()

	r.logger.WithFields(logrus.Fields{"ip": ip, "path": path}).Debug(action)

	if r.rdb != nil {
		go r.publish(entry)
	}
}

func (r *Recorder) publish(entry ActionRecord) {
	data, err := json.Marshal(entry)
	if err != nil {
		r.logger.WithError(err).Warn("failed to marshal action record")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.rdb.RPush(ctx, r.queue, data).Err(); err != nil {
		r.logger.WithError(err).Warn("failed to enqueue action record")
	}
}

// Recent returns up to limit records, most recent first.
func (r *Recorder) Recent(limit int) []ActionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return collectReversed(r.entries, limit, func(ActionRecord) bool { return true })
}

// ByIP returns up to limit records for one client IP, most recent first.
func (r *Recorder) ByIP(ip string, limit int) []ActionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return collectReversed(r.entries, limit, func(e ActionRecord) bool { return e.IP == ip })
}

// Len returns the number of records currently held.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func collectReversed(entries []ActionRecord, limit int, keep func(ActionRecord) bool) []ActionRecord {
	out := make([]ActionRecord, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}
