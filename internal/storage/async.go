package storage

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/raydebug/puretexaspoker-sub003/engine"
	"github.com/raydebug/puretexaspoker-sub003/models"
)

const (
	writeQueueSize   = 1024
	writeMaxAttempts = 5
	writeBaseBackoff = 100 * time.Millisecond
	writeTimeout     = 5 * time.Second
)

type queuedWrite struct {
	name string
	op   func(ctx context.Context) error
}

// AsyncWriter adapts a Store to the engine's fire-and-forget persistence
// contract. Writes are queued and retried with exponential backoff on a
// background goroutine, so a slow or flapping database never blocks a hand.
type AsyncWriter struct {
	store  Store
	queue  chan queuedWrite
	logger *log.Logger
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

var _ engine.Store = (*AsyncWriter)(nil)

func NewAsyncWriter(store Store, logger *log.Logger) *AsyncWriter {
	w := &AsyncWriter{
		store:  store,
		queue:  make(chan queuedWrite, writeQueueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *AsyncWriter) RecordAction(record models.ActionRecord) {
	w.enqueue("record action", func(ctx context.Context) error {
		return w.store.RecordAction(ctx, record)
	})
}

func (w *AsyncWriter) CommitDeck(tableID string, commitment engine.Commitment) {
	handID, hash := commitment.HandID, commitment.Hash
	w.enqueue("commit deck", func(ctx context.Context) error {
		return w.store.CommitDeck(ctx, tableID, handID, hash)
	})
}

func (w *AsyncWriter) RevealDeck(handID, seedHex string, cardOrder []models.Card) {
	encoded := EncodeCardOrder(cardOrder)
	w.enqueue("reveal deck", func(ctx context.Context) error {
		return w.store.RevealDeck(ctx, handID, seedHex, encoded)
	})
}

func (w *AsyncWriter) UpsertSeat(tableID string, seatNumber int, player *models.Player) {
	if player != nil {
		p := *player
		player = &p
	}
	w.enqueue("upsert seat", func(ctx context.Context) error {
		return w.store.UpsertSeat(ctx, tableID, seatNumber, player)
	})
}

func (w *AsyncWriter) UpsertTable(snapshot models.Table) {
	w.enqueue("upsert table", func(ctx context.Context) error {
		return w.store.UpsertTable(ctx, snapshot)
	})
}

// Stop drains the queue and waits for the worker to finish. Safe to call
// more than once; writes arriving afterwards are dropped with a log entry.
func (w *AsyncWriter) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()
	<-w.done
}

func (w *AsyncWriter) enqueue(name string, op func(ctx context.Context) error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Error("write after shutdown dropped", "op", name)
		return
	}
	select {
	case w.queue <- queuedWrite{name: name, op: op}:
	default:
		w.logger.Error("write queue full, dropping write", "op", name)
	}
}

func (w *AsyncWriter) run() {
	defer close(w.done)
	for write := range w.queue {
		w.execute(write)
	}
}

func (w *AsyncWriter) execute(write queuedWrite) {
	backoff := writeBaseBackoff
	for attempt := 1; attempt <= writeMaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := write.op(ctx)
		cancel()
		if err == nil {
			return
		}
		if attempt == writeMaxAttempts {
			w.logger.Error("write failed permanently", "op", write.name, "attempts", attempt, "err", err)
			return
		}
		w.logger.Warn("write failed, retrying", "op", write.name, "attempt", attempt, "err", err)
		time.Sleep(backoff)
		backoff *= 2
	}
}
