// internal/historian/historian.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mhollis/bridge/internal/database"
	"github.com/mhollis/bridge/internal/history"
)

// Service drains the action queue the game server publishes to Redis and
// persists the records to Postgres in batches. It also watches per-room
// activity and marks rooms abandoned in the archive after a quiet period.
type Service struct {
	redisClient *redis.Client
	queueName   string
	batchSize   int
	flushDelay  time.Duration
	inactivity  time.Duration

	// lastActivity maps room code -> time of the room's latest action.
	lastActivity sync.Map

	batchMu sync.Mutex
	batch   []history.ActionRecord

	// archiveFn and abandonFn default to the database package; tests swap in
	// collectors so no Postgres is needed.
	archiveFn func(ctx context.Context, records []history.ActionRecord) error
	abandonFn func(ctx context.Context, roomCode string) error

	ctx      context.Context
	cancelFn context.CancelFunc
	logger   logrus.FieldLogger
}

// Options configure a Service; zero values fall back to defaults.
type Options struct {
	QueueName  string
	BatchSize  int
	FlushDelay time.Duration
	Inactivity time.Duration
}

// New constructs a Service reading from rdb.
func New(rdb *redis.Client, opts Options, logger logrus.FieldLogger) *Service {
	if opts.QueueName == "" {
		opts.QueueName = history.DefaultQueueName
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay == 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.Inactivity == 0 {
		opts.Inactivity = 10 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		redisClient: rdb,
		queueName:   opts.QueueName,
		batchSize:   opts.BatchSize,
		flushDelay:  opts.FlushDelay,
		inactivity:  opts.Inactivity,
		batch:       make([]history.ActionRecord, 0, opts.BatchSize),
		archiveFn:   database.ArchiveActions,
		abandonFn:   database.MarkRoomAbandoned,
		ctx:         ctx,
		cancelFn:    cancel,
		logger:      logger,
	}
}

// Run starts the queue reader and the inactivity sweep, then blocks until
// Stop is called.
func (s *Service) Run() {
	go s.readQueueLoop()
	go s.inactivityLoop()

	s.logger.Info("historian started")
	<-s.ctx.Done()
	s.logger.Info("historian shutting down")
}

// Stop gracefully stops the service.
func (s *Service) Stop() {
	s.cancelFn()
}

// readQueueLoop pops records off the Redis list and accumulates them into
// batches, flushing on size or on the flush timer.
func (s *Service) readQueueLoop() {
	ticker := time.NewTicker(s.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.flush()
			return

		case <-ticker.C:
			s.flush()

		default:
			// BLPop with a short timeout so cancellation is noticed.
			res, err := s.redisClient.BLPop(s.ctx, 3*time.Second, s.queueName).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && s.ctx.Err() == nil {
					s.logger.WithError(err).Error("BLPop failed")
				}
				continue
			}
			if len(res) < 2 {
				continue
			}

			var record history.ActionRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				s.logger.WithError(err).Warn("invalid action record")
				continue
			}
			s.ingest(record)
		}
	}
}

// ingest tracks room activity and appends the record, flushing when the
// batch is full.
func (s *Service) ingest(record history.ActionRecord) {
	if code := roomCodeOf(record); code != "" {
		s.lastActivity.Store(code, time.Now())
	}

	s.batchMu.Lock()
	s.batch = append(s.batch, record)
	full := len(s.batch) >= s.batchSize
	s.batchMu.Unlock()

	if full {
		s.flush()
	}
}

// flush writes the pending batch in a single transaction.
func (s *Service) flush() {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	batchCopy := make([]history.ActionRecord, len(s.batch))
	copy(batchCopy, s.batch)
	s.batch = s.batch[:0]
	s.batchMu.Unlock()

	if err := s.archiveFn(context.Background(), batchCopy); err != nil {
		s.logger.WithError(err).Error("failed to archive action batch")
		return
	}
	s.logger.WithField("count", len(batchCopy)).Debug("archived actions")
}

// inactivityLoop periodically marks rooms abandoned once they have been
// quiet beyond the threshold.
func (s *Service) inactivityLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()
			s.lastActivity.Range(func(key, val interface{}) bool {
				code, ok1 := key.(string)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > s.inactivity {
					if err := s.abandonFn(context.Background(), code); err != nil {
						s.logger.WithError(err).WithField("room", code).Error("failed to mark room abandoned")
					} else {
						s.logger.WithField("room", code).Info("room marked abandoned")
					}
					s.lastActivity.Delete(code)
				}
				return true
			})
		}
	}
}

func roomCodeOf(rec history.ActionRecord) string {
	if rec.Details == nil {
		return ""
	}
	code, _ := rec.Details["room_code"].(string)
	return code
}
