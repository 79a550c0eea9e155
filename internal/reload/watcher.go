package reload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"golang.org/x/time/rate"
)

// ErrTooLarge is reported when the watched file exceeds the size limit.
var ErrTooLarge = errors.New("file too large for live reload")

// DefaultMinInterval bounds how often the file is re-read.
const DefaultMinInterval = 200 * time.Millisecond

// Event carries either the new file contents or the error hit reading them.
type Event struct {
	Data []byte
	Err  error
}

// WatcherOptions tunes a Watcher.
type WatcherOptions struct {
	// MaxDataSize rejects files larger than this many bytes; 0 disables it.
	MaxDataSize int64
	MinInterval time.Duration
}

// Watcher re-reads a file whenever it changes. Only the latest unread event
// is kept: a slow consumer sees the newest contents, never a backlog.
type Watcher struct {
	path    string
	opts    WatcherOptions
	fs      *fsnotify.Watcher
	events  chan Event
	limiter *rate.Limiter
	log     logr.Logger
}

// NewWatcher watches path. The parent directory is watched so editors that
// replace the file by rename keep being tracked.
func NewWatcher(path string, opts WatcherOptions, log logr.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:    abs,
		opts:    opts,
		fs:      fw,
		events:  make(chan Event, 1),
		limiter: rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		log:     log.WithValues("path", abs),
	}, nil
}

// Events returns the channel of reload events. It is closed when Run
// returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run delivers events until ctx is cancelled or the underlying watcher
// fails for good.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	defer func() { _ = w.fs.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.drain()
			w.log.V(1).Info("file changed", "op", ev.Op.String())
			w.publish(w.read())
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error(err, "file watcher error")
			w.publish(Event{Err: err})
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// drain discards notifications queued while waiting on the limiter; the
// read that follows covers them.
func (w *Watcher) drain() {
	for {
		select {
		case _, ok := <-w.fs.Events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (w *Watcher) read() Event {
	info, err := os.Stat(w.path)
	if err != nil {
		return Event{Err: fmt.Errorf("stat %s: %w", w.path, err)}
	}
	if w.opts.MaxDataSize > 0 && info.Size() > w.opts.MaxDataSize {
		return Event{Err: fmt.Errorf("%s is %d bytes, limit is %d: %w", w.path, info.Size(), w.opts.MaxDataSize, ErrTooLarge)}
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return Event{Err: fmt.Errorf("read %s: %w", w.path, err)}
	}
	return Event{Data: data}
}

// publish replaces any unread event with ev.
func (w *Watcher) publish(ev Event) {
	for {
		select {
		case w.events <- ev:
			return
		default:
		}
		select {
		case <-w.events:
		default:
		}
	}
}
