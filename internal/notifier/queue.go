package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key layout:
//
//	task:ready:{run_at_unix_nano, 19 digits}:{id}
//	task:inflight:{id}
//	task:dead:{id}
//
// The zero padded timestamp keeps ready tasks sorted by due time.
const (
	readyPrefix    = "task:ready:"
	inflightPrefix = "task:inflight:"
	deadPrefix     = "task:dead:"
)

// Queue is a durable task queue stored in badger. A task claimed by a worker
// stays in the inflight set until it is acknowledged, retried or buried, so
// a crash never loses it.
type Queue struct {
	db *badger.DB
	mu sync.Mutex
}

func NewQueue(db *badger.DB) *Queue {
	return &Queue{db: db}
}

func readyKey(t Task) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", readyPrefix, t.RunAt.UnixNano(), t.ID))
}

func (q *Queue) Push(t Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("queue.Push: %w", err)
	}
	return q.db.Update(func(txn *badger.Txn) error {
		return txn.Set(readyKey(t), data)
	})
}

// Claim moves the earliest task due at now to the inflight set and returns
// it. It returns nil when nothing is due. Entries that do not decode are
// moved to the dead set so they cannot block the tasks behind them.
func (q *Queue) Claim(now time.Time) (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var claimed *Task
	err := q.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(readyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var t Task
			if err := json.Unmarshal(data, &t); err != nil || t.ID == "" {
				log.Printf("[NOTIFIER] corrupt task %s, burying: %v", key, err)
				if err := txn.Delete(key); err != nil {
					return err
				}
				dead := append([]byte(deadPrefix), key[len(readyPrefix):]...)
				if err := txn.Set(dead, data); err != nil {
					return err
				}
				continue
			}
			if t.RunAt.After(now) {
				return nil
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Set([]byte(inflightPrefix+t.ID), data); err != nil {
				return err
			}
			claimed = &t
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("queue.Claim: %w", err)
	}
	return claimed, nil
}

// Ack drops a delivered task.
func (q *Queue) Ack(t Task) error {
	return q.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(inflightPrefix + t.ID))
	})
}

// Retry puts an inflight task back in the ready set, due at t.RunAt.
func (q *Queue) Retry(t Task) error {
	return q.move(t, readyKey(t))
}

// Bury parks a task that will not be retried.
func (q *Queue) Bury(t Task) error {
	return q.move(t, []byte(deadPrefix+t.ID))
}

func (q *Queue) move(t Task, to []byte) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return q.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(inflightPrefix + t.ID)); err != nil {
			return err
		}
		return txn.Set(to, data)
	})
}

// Recover returns every inflight task to the ready set. It must run before
// any worker starts claiming.
func (q *Queue) Recover(now time.Time) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	tasks, err := q.scan(inflightPrefix)
	if err != nil {
		return 0, err
	}
	for _, t := range tasks {
		t.RunAt = now
		if err := q.move(t, readyKey(t)); err != nil {
			return 0, fmt.Errorf("queue.Recover: %w", err)
		}
	}
	return len(tasks), nil
}

func (q *Queue) Ready() ([]Task, error) {
	return q.scan(readyPrefix)
}

func (q *Queue) Dead() ([]Task, error) {
	return q.scan(deadPrefix)
}

func (q *Queue) scan(prefix string) ([]Task, error) {
	tasks := []Task{}
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var t Task
				if err := json.Unmarshal(val, &t); err != nil {
					log.Printf("[NOTIFIER] skipping corrupt entry %s: %v", it.Item().Key(), err)
					return nil
				}
				tasks = append(tasks, t)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("queue.scan %s: %w", prefix, err)
	}
	return tasks, nil
}
