package featureflag

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ChangeListener is called with the previous and the new value whenever a watched flag changes.
type ChangeListener func(key string, oldValue, newValue bool)

// Watcher periodically re-evaluates one flag and serves the last seen value. It implements
// Source, answering for its own key from memory and delegating every other key. A failed
// refresh keeps the previous value.
type Watcher struct {
	source   Source
	key      string
	fallback bool
	timeout  time.Duration
	log      logrus.FieldLogger

	cron *cron.Cron

	mu        sync.RWMutex
	value     bool
	lastErr   error
	checked   time.Time
	listeners []ChangeListener
}

// NewWatcher creates a Watcher refreshing key on spec, a standard cron expression or a
// descriptor such as "@every 30s". The value is fallback until the first refresh.
func NewWatcher(source Source, key string, fallback bool, spec string, log logrus.FieldLogger) (*Watcher, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	w := &Watcher{
		source:   source,
		key:      key,
		fallback: fallback,
		timeout:  5 * time.Second,
		log:      log.WithField("flag", key),
		cron:     cron.New(),
		value:    fallback,
	}
	if _, err := w.cron.AddFunc(spec, func() { w.Refresh(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid flag refresh schedule %q: %w", spec, err)
	}
	return w, nil
}

// OnChange registers a listener. Listeners run synchronously on the refreshing goroutine.
func (w *Watcher) OnChange(l ChangeListener) {
	w.mu.Lock()
	w.listeners = append(w.listeners, l)
	w.mu.Unlock()
}

// Refresh evaluates the flag now. On error the previous value is kept.
func (w *Watcher) Refresh(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	w.mu.RLock()
	current := w.value
	w.mu.RUnlock()

	v, err := w.source.BoolVariation(ctx, w.key, current)

	w.mu.Lock()
	w.checked = time.Now()
	w.lastErr = err
	if err != nil {
		w.mu.Unlock()
		w.log.WithError(err).Warn("flag refresh failed, keeping previous value")
		return current
	}
	old := w.value
	w.value = v
	listeners := append([]ChangeListener(nil), w.listeners...)
	w.mu.Unlock()

	if old != v {
		w.log.WithFields(logrus.Fields{"old": old, "new": v}).Info("feature flag changed")
		for _, l := range listeners {
			l(w.key, old, v)
		}
	}
	return v
}

// Value returns the last seen value without contacting the source.
func (w *Watcher) Value() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.value
}

// Status reports the last seen value, the error of the last refresh and when it ran.
func (w *Watcher) Status() (value bool, lastErr error, checked time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.value, w.lastErr, w.checked
}

func (w *Watcher) BoolVariation(ctx context.Context, key string, fallback bool) (bool, error) {
	if key != w.key {
		return w.source.BoolVariation(ctx, key, fallback)
	}
	return w.Value(), nil
}

// Start refreshes once and then on schedule in the background.
func (w *Watcher) Start(ctx context.Context) {
	w.Refresh(ctx)
	w.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
}
