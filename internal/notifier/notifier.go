package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gfdmit/web-forum/posts-api/config"
)

// Notifier schedules side effects outside the request cycle. Enqueueing is a
// single local write; delivery happens on the worker pool started by Run,
// at least once, with bounded retries and no ordering guarantee.
type Notifier struct {
	queue    *Queue
	conf     config.Notifier
	handlers map[string]Handler
	wake     chan struct{}
	now      func() time.Time
}

func New(queue *Queue, conf config.Notifier) *Notifier {
	if conf.Workers < 1 {
		conf.Workers = 1
	}
	if conf.MaxAttempts < 1 {
		conf.MaxAttempts = 1
	}
	if conf.Poll <= 0 {
		conf.Poll = time.Second
	}
	if conf.TaskTimeout <= 0 {
		conf.TaskTimeout = time.Minute
	}
	return &Notifier{
		queue:    queue,
		conf:     conf,
		handlers: map[string]Handler{},
		wake:     make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Handle registers the handler for a task kind. Call it before Run.
func (n *Notifier) Handle(kind string, h Handler) {
	n.handlers[kind] = h
}

// Notify enqueues an email notification for immediate delivery.
func (n *Notifier) Notify(ctx context.Context, notification Notification) error {
	return n.Schedule(ctx, KindEmail, notification, 0)
}

// Schedule enqueues a task of the given kind, due after delay.
func (n *Notifier) Schedule(_ context.Context, kind string, payload any, delay time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notifier.Schedule: %w", err)
	}
	task := Task{
		ID:      uuid.NewString(),
		Kind:    kind,
		Payload: data,
		RunAt:   n.now().Add(delay),
	}
	if err := n.queue.Push(task); err != nil {
		return fmt.Errorf("notifier.Schedule: %w", err)
	}
	if delay <= 0 {
		select {
		case n.wake <- struct{}{}:
		default:
		}
	}
	return nil
}

// Run re-queues tasks left in flight by a previous process and serves the
// queue until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	recovered, err := n.queue.Recover(n.now())
	if err != nil {
		return err
	}
	if recovered > 0 {
		log.Printf("[NOTIFIER] re-queued %d unacknowledged task(s)", recovered)
	}

	log.Printf("[NOTIFIER] starting %d worker(s)", n.conf.Workers)
	var wg sync.WaitGroup
	for i := 0; i < n.conf.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.work(ctx)
		}()
	}
	wg.Wait()
	log.Println("[SHUTDOWN] notifier workers stopped")
	return nil
}

func (n *Notifier) work(ctx context.Context) {
	ticker := time.NewTicker(n.conf.Poll)
	defer ticker.Stop()

	for {
		for ctx.Err() == nil {
			task, err := n.queue.Claim(n.now())
			if err != nil {
				log.Printf("[NOTIFIER] claim error: %v", err)
				break
			}
			if task == nil {
				break
			}
			n.process(ctx, *task)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-n.wake:
		}
	}
}

func (n *Notifier) process(ctx context.Context, task Task) {
	handler, ok := n.handlers[task.Kind]
	if !ok {
		task.LastError = "no handler registered"
		log.Printf("[NOTIFIER] task %s: unknown kind %q, burying", task.ID, task.Kind)
		if err := n.queue.Bury(task); err != nil {
			log.Printf("[NOTIFIER] task %s: bury error: %v", task.ID, err)
		}
		return
	}

	err := n.call(ctx, handler, task)
	if err == nil {
		if err := n.queue.Ack(task); err != nil {
			log.Printf("[NOTIFIER] task %s: ack error: %v", task.ID, err)
		}
		return
	}

	if ctx.Err() != nil {
		// Interrupted by shutdown; the attempt does not count.
		task.RunAt = n.now()
		if err := n.queue.Retry(task); err != nil {
			log.Printf("[NOTIFIER] task %s: requeue error: %v", task.ID, err)
		}
		return
	}

	task.Attempts++
	task.LastError = err.Error()
	if task.Attempts >= n.conf.MaxAttempts {
		log.Printf("[NOTIFIER] task %s (%s) failed after %d attempt(s), giving up: %v",
			task.ID, task.Kind, task.Attempts, err)
		if err := n.queue.Bury(task); err != nil {
			log.Printf("[NOTIFIER] task %s: bury error: %v", task.ID, err)
		}
		return
	}

	delay := n.backoff(task.Attempts)
	task.RunAt = n.now().Add(delay)
	log.Printf("[NOTIFIER] task %s (%s) attempt %d failed, retrying in %s: %v",
		task.ID, task.Kind, task.Attempts, delay, err)
	if err := n.queue.Retry(task); err != nil {
		log.Printf("[NOTIFIER] task %s: retry error: %v", task.ID, err)
	}
}

// call runs the handler under the task timeout. A handler still running at
// the deadline, or at shutdown, is abandoned and the attempt fails.
func (n *Notifier) call(ctx context.Context, handler Handler, task Task) error {
	ctx, cancel := context.WithTimeout(ctx, n.conf.TaskTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				log.Printf("[NOTIFIER] task %s: panic: %v\n%s", task.ID, p, debug.Stack())
				done <- fmt.Errorf("handler panic: %v", p)
			}
		}()
		done <- handler(ctx, task)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("task %s abandoned: %w", task.ID, ctx.Err())
	}
}

// backoff doubles the base delay per failed attempt, capped at MaxBackoff.
func (n *Notifier) backoff(attempts int) time.Duration {
	delay := n.conf.Backoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if n.conf.MaxBackoff > 0 && delay >= n.conf.MaxBackoff {
			return n.conf.MaxBackoff
		}
	}
	return delay
}
