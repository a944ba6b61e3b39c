package internal

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

type Option func(w *Watcher)

// WithCallbackFunction
// subscribe hook over every event of the watcher, each hook gets its own
// goroutine so a slow hook only delays itself.
func WithCallbackFunction(hook func(e Event, err error)) Option {
	return func(w *Watcher) {
		w.hooks = append(w.hooks, hook)
	}
}

func WithBufferSize(size int32) Option {
	return func(w *Watcher) {
		if size > 0 {
			w.bufferSize = size
		}
	}
}

type notification struct {
	e   Event
	err error
}

type Watcher struct {
	fw         *fsnotify.Watcher
	closed     chan struct{}
	done       chan struct{}
	once       sync.Once
	hooks      []func(e Event, err error)
	subs       []chan notification
	bufferSize int32
	wg         sync.WaitGroup
	path       string
	// hooking
	// number of hooks running right now, Close called from one of them must
	// not wait for the hook goroutines.
	hooking atomic.Int32
}

// NewWatcher
// watch over path and all of its sub directories.
func NewWatcher(path string, options ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := Watcher{
		fw:         fw,
		closed:     make(chan struct{}),
		done:       make(chan struct{}),
		subs:       make([]chan notification, 0),
		bufferSize: 25,
		path:       path,
	}

	err = w.watchPath(path)
	if err != nil {
		_ = fw.Close()
		return nil, err
	}

	for _, op := range options {
		if op != nil {
			op(&w)
		}
	}

	// hooks are subscribed once every option is applied, so the buffer size
	// does not depend on the option order.
	for _, hook := range w.hooks {
		w.subscribe(hook)
	}

	go w.run()

	return &w, nil
}

func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) watchPath(path string) error {
	files, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.IsDir() {
			err = w.watchPath(filepath.Join(path, f.Name()))
			if err != nil {
				return err
			}
		}
	}

	return w.fw.Add(path)
}

func (w *Watcher) fanOut(n notification) {
	if len(n.e.Name) == 0 && n.err == nil { // no event !
		return
	}

	for i := range w.subs {
		w.subs[i] <- n
	}
}

func (w *Watcher) run() {
	defer close(w.done)

	events := w.fw.Events
	errs := w.fw.Errors
	for {
		select {
		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			event := fromFsnotify(e)
			if event.Has(Create) {
				fs, _ := os.Stat(event.Name)
				if fs != nil && fs.IsDir() {
					_ = w.watchPath(event.Name)
				}
			}
			w.fanOut(notification{e: event})
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.fanOut(notification{err: err})
		case <-w.closed:
			w.fanOut(notification{e: Event{Name: ExitName, Op: Exit}})
			for i := range w.subs {
				close(w.subs[i])
			}
			return
		}
	}
}

func (w *Watcher) subscribe(hook func(e Event, err error)) {
	ech := make(chan notification, w.bufferSize)
	w.subs = append(w.subs, ech)
	w.wg.Add(1)

	go func(ech chan notification) {
		defer w.wg.Done()
		for n := range ech {
			w.call(hook, n)
		}
	}(ech)
}

func (w *Watcher) call(hook func(e Event, err error), n notification) {
	w.hooking.Add(1)
	defer w.hooking.Add(-1)
	hook(n.e, n.err)
}

// Close
// stop the filesystem watcher, deliver exit event to every hook and wait for
// them to drain. safe to call more than once. when called while a hook is
// running, eg. from inside a hook, it returns without waiting and the hook
// goroutines finish on their own.
func (w *Watcher) Close() {
	w.once.Do(func() {
		close(w.closed)  // Close local threads
		_ = w.fw.Close() // Close filesystem watcher
		if w.hooking.Load() > 0 {
			return
		}
		<-w.done
		w.wg.Wait()
	})
}
