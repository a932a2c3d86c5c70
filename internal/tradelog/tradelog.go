// Package tradelog keeps the append-only record of confirmed trades and
// optionally persists it through a Writer.
package tradelog

import (
	"sync"

	"github.com/tradebotlab/krakenbot/internal/types"
)

// Writer is a persistent sink for confirmed trade records.
type Writer interface {
	Write(record types.TradeRecord) error
	Close() error
}

// TradeLog is the append-only in-memory log of confirmed trades. Records
// are deduplicated by execution ID so the persistent sink sees at most one
// record per confirmed execution.
type TradeLog struct {
	mu      sync.RWMutex
	records []types.TradeRecord
	seen    map[string]struct{}
	writer  Writer
}

// New creates an empty trade log. writer may be nil to disable persistence.
func New(writer Writer) *TradeLog {
	return &TradeLog{
		mu:      sync.RWMutex{},
		records: nil,
		seen:    make(map[string]struct{}),
		writer:  writer,
	}
}

// Append records a confirmed trade. A record whose ID was already appended
// is ignored; the write error (if any) is returned but the in-memory append
// still holds, so a flaky sink never loses the in-process view.
func (l *TradeLog) Append(record types.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[record.ID]; dup {
		return nil
	}

	l.seen[record.ID] = struct{}{}
	l.records = append(l.records, record)

	if l.writer != nil {
		return l.writer.Write(record)
	}

	return nil
}

// Len returns the number of recorded trades.
func (l *TradeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.records)
}

// Tail returns a copy of the most recent n records, oldest first.
func (l *TradeLog) Tail(n int) []types.TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || len(l.records) == 0 {
		return []types.TradeRecord{}
	}

	if n > len(l.records) {
		n = len(l.records)
	}

	tail := make([]types.TradeRecord, n)
	copy(tail, l.records[len(l.records)-n:])

	return tail
}

// Close closes the persistent sink, if any.
func (l *TradeLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer != nil {
		return l.writer.Close()
	}

	return nil
}
