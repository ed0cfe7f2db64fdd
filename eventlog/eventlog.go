// Package eventlog provides a bounded, rate-limited, append-only record
// of match events, suitable for replay or post-hoc review. It is the
// curling engine's audit trail: every shot, foul, end score and game
// result passes through it, but it never blocks ApplyMove and never grows
// without bound.
package eventlog

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize    = 1024
	MaxEventsPerSec    = 1000
	MaxEventsPerTeam   = 200
	BatchFlushSize     = 64
	BatchFlushInterval = 100 * time.Millisecond
)

// EventLog is a lock-free single-producer circular buffer drained by an
// async writer goroutine.
type EventLog struct {
	buffer    [EventBufferSize]Event
	writeHead uint64
	readHead  uint64

	globalLimiter *rate.Limiter
	teamLimiters  sync.Map // map[string]*rate.Limiter

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	filePath string
	file     *os.File
	fileMu   sync.Mutex

	droppedCount uint64
	totalCount   uint64
}

// NewEventLog creates a new bounded event log.
func NewEventLog() *EventLog {
	return &EventLog{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start begins the async writer goroutine, appending newline-delimited
// JSON to filePath. An empty filePath runs the log in memory-only mode
// (events are still rate-limited and counted, just never written).
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	el.filePath = filePath

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = file
	}

	el.running.Store(true)
	el.writerWg.Add(1)
	go el.writerLoop()
	return nil
}

// Stop gracefully shuts down the event log, flushing any buffered events.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		el.fileMu.Lock()
		if el.file != nil {
			el.file.Close()
		}
		el.fileMu.Unlock()
	})
}

// Emit adds an event, subject to global and per-team rate limiting.
// Returns false if the event was dropped.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}
	if !el.globalLimiter.Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}
	if event.Team != "" {
		if !el.teamLimiter(event.Team).Allow() {
			atomic.AddUint64(&el.droppedCount, 1)
			return false
		}
	}

	head := atomic.AddUint64(&el.writeHead, 1)
	tail := atomic.LoadUint64(&el.readHead)
	if head-tail >= EventBufferSize {
		atomic.AddUint64(&el.readHead, 1)
		atomic.AddUint64(&el.droppedCount, 1)
	}

	event.Sequence = head
	el.buffer[(head-1)%EventBufferSize] = event
	atomic.AddUint64(&el.totalCount, 1)
	return true
}

// EmitSimple is a convenience wrapper that builds the Event before
// emitting it.
func (el *EventLog) EmitSimple(eventType EventType, end int, team string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, end, team, payload))
}

func (el *EventLog) teamLimiter(team string) *rate.Limiter {
	if l, ok := el.teamLimiters.Load(team); ok {
		return l.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(MaxEventsPerTeam, MaxEventsPerTeam/10)
	actual, _ := el.teamLimiters.LoadOrStore(team, limiter)
	return actual.(*rate.Limiter)
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)
	for {
		select {
		case <-el.stopChan:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
			return
		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

func (el *EventLog) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)

	for i := tail; i < head && len(batch) < BatchFlushSize; i++ {
		batch = append(batch, el.buffer[i%EventBufferSize])
	}
	if len(batch) > 0 {
		atomic.AddUint64(&el.readHead, uint64(len(batch)))
	}
	return batch
}

func (el *EventLog) flushBatch(batch []Event) {
	el.fileMu.Lock()
	defer el.fileMu.Unlock()

	if el.file == nil {
		return
	}
	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		el.file.Write(data)
		el.file.Write([]byte("\n"))
	}
}

// Stats reports counters useful for monitoring the log's health.
type Stats struct {
	Total   uint64
	Dropped uint64
	Pending uint64
	Running bool
}

func (el *EventLog) GetStats() Stats {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)
	return Stats{
		Total:   atomic.LoadUint64(&el.totalCount),
		Dropped: atomic.LoadUint64(&el.droppedCount),
		Pending: head - tail,
		Running: el.running.Load(),
	}
}
