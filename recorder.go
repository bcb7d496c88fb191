package main

import (
	"log"
	"sync"
	"time"
)

// Record kinds
const (
	recChat        = "chat"
	recFailedLogin = "failed_login"
	recMatch       = "match"
)

// record is a single queued write
type record struct {
	Kind     string
	Sender   string
	Message  string
	RoomID   string
	Winner   string
	Duration float64 // seconds
	Reason   string
}

// Recorder persists chat lines, failed admin logins and match results
// with batched background writes so the game loop never waits on disk.
type Recorder struct {
	db      *DB
	records chan record
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewRecorder creates and starts the recorder background writer
func NewRecorder(db *DB) *Recorder {
	r := &Recorder{
		db:      db,
		records: make(chan record, 1024),
		stop:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.writer()
	return r
}

// RecordChat enqueues a chat line for async persistence (non-blocking)
func (r *Recorder) RecordChat(sender, message string) {
	r.enqueue(record{Kind: recChat, Sender: sender, Message: message})
}

// RecordFailedLogin enqueues a failed admin login attempt (non-blocking)
func (r *Recorder) RecordFailedLogin(name string) {
	r.enqueue(record{Kind: recFailedLogin, Sender: name})
}

// RecordMatch enqueues a finished room result (non-blocking)
func (r *Recorder) RecordMatch(roomID, winner string, duration time.Duration, reason string) {
	r.enqueue(record{
		Kind:     recMatch,
		RoomID:   roomID,
		Winner:   winner,
		Duration: duration.Seconds(),
		Reason:   reason,
	})
}

func (r *Recorder) enqueue(rec record) {
	select {
	case r.records <- rec:
	default:
		// Channel full, drop the record rather than blocking the game loop
	}
}

// Stop gracefully shuts down the recorder writer
func (r *Recorder) Stop() {
	close(r.stop)
	r.wg.Wait()
}

// writer is the background goroutine that batches and writes records to DB
func (r *Recorder) writer() {
	defer r.wg.Done()

	batch := make([]record, 0, 64)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case rec := <-r.records:
			batch = append(batch, rec)
			// Flush immediately if batch is large
			if len(batch) >= 50 {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-r.stop:
			// Drain whatever is buffered without closing the channel, so
			// a late enqueue from a client goroutine can never panic
			for {
				select {
				case rec := <-r.records:
					batch = append(batch, rec)
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of records to the database
func (r *Recorder) flush(batch []record) {
	if r.db == nil || len(batch) == 0 {
		return
	}
	tx, err := r.db.conn.Begin()
	if err != nil {
		log.Printf("recorder: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	for _, rec := range batch {
		switch rec.Kind {
		case recChat:
			err = insertChat(tx, rec.Sender, rec.Message)
		case recFailedLogin:
			err = insertFailedLogin(tx, rec.Sender)
		case recMatch:
			err = insertMatch(tx, rec.RoomID, rec.Winner, rec.Duration, rec.Reason)
		}
		if err != nil {
			log.Printf("recorder: insert error: %v", err)
		}
	}
	tx.Commit()
}

// ChatHistory reads back the latest persisted chat lines, newest first.
// Lines still sitting in the write batch are not visible yet.
func (r *Recorder) ChatHistory(n int) ([]ChatRow, error) {
	if r.db == nil {
		return nil, nil
	}
	return r.db.RecentChat(n)
}
