// Package reminder turns pending due dates into timed alerts. It is
// boundary-only machinery: the collection manager never waits on it, the
// presentation layer drains its channel.
package reminder

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidylist/tidylist/internal/model"
)

var ErrInvalidTriggerTime = errors.New("reminder: invalid trigger time")

// Alert announces that a todo crossed into a due classification.
type Alert struct {
	TodoID    string
	Title     string
	Status    model.DueStatus
	TriggerAt time.Time
}

type queueItem struct {
	alert Alert
}

type alertQueue []queueItem

func (q alertQueue) Len() int { return len(q) }

func (q alertQueue) Less(i, j int) bool {
	return q[i].alert.TriggerAt.Before(q[j].alert.TriggerAt)
}

func (q alertQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *alertQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *alertQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Engine waits on a min-heap of trigger times and emits alerts on a
// buffered channel. A slow consumer loses alerts instead of blocking the
// timer loop; Dropped reports how many.
type Engine struct {
	mu      sync.Mutex
	queue   alertQueue
	out     chan Alert
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(alertQueue, 0),
		out:    make(chan Alert, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Alert {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(alert Alert) error {
	if alert.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("reminder: engine stopped")
	}

	heap.Push(&e.queue, queueItem{alert: alert})
	e.signalWakeup()
	return nil
}

// Reschedule drops every queued alert and schedules the plan for the given
// collection. Called after any collection change.
func (e *Engine) Reschedule(todos []model.Todo, now time.Time) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.queue = e.queue[:0]
	for _, alert := range PlanAlerts(todos, now) {
		heap.Push(&e.queue, queueItem{alert: alert})
	}
	e.signalWakeup()
	e.mu.Unlock()
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

// PlanAlerts derives the future trigger points for a collection: one alert
// when a pending todo enters its due-soon window and one when it becomes
// overdue. Completed and undated todos get none.
func PlanAlerts(todos []model.Todo, now time.Time) []Alert {
	var alerts []Alert
	for _, todo := range todos {
		if todo.Completed || todo.DueDate == nil {
			continue
		}
		due := *todo.DueDate
		if soonAt := due.Add(-24 * time.Hour); soonAt.After(now) {
			alerts = append(alerts, Alert{
				TodoID:    todo.ID,
				Title:     todo.Title,
				Status:    model.DueSoon,
				TriggerAt: soonAt,
			})
		}
		if due.After(now) {
			alerts = append(alerts, Alert{
				TodoID:    todo.ID,
				Title:     todo.Title,
				Status:    model.DueOverdue,
				TriggerAt: due,
			})
		}
	}
	return alerts
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now().UTC())
			for _, alert := range due {
				select {
				case e.out <- alert:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Alert, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return Alert{}, false
	}
	return e.queue[0].alert, true
}

func (e *Engine) popDue(now time.Time) []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Alert, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].alert
		if next.TriggerAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		out = append(out, item.alert)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
