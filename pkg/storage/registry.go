package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/ManouchehrRasoulli/localstore/internal"
	"github.com/ManouchehrRasoulli/localstore/pkg/logger"
)

// Registry
// live handles of one base directory and the change watcher shared by them.
// the watcher is started by the first callback registration and lives until
// Close.
type Registry struct {
	base       string
	bufferSize int32
	logger     *logger.ColorLogger

	// handles
	// every handle which is not disposed yet, consulted on each event.
	handles map[*Handle]struct{}
	rwM     sync.RWMutex

	wM      sync.Mutex
	watcher *internal.Watcher
	closed  bool
}

func NewRegistry(base string, lg *logger.ColorLogger, bufferSize int32) *Registry {
	if lg == nil {
		lg = logger.Discard()
	}

	r := Registry{
		base:       filepath.Clean(base),
		bufferSize: bufferSize,
		logger:     lg,
		handles:    make(map[*Handle]struct{}),
	}

	return &r
}

func (r *Registry) Base() string {
	return r.base
}

// Len number of live handles.
func (r *Registry) Len() int {
	r.rwM.RLock()
	defer r.rwM.RUnlock()
	return len(r.handles)
}

func (r *Registry) Started() bool {
	r.wM.Lock()
	defer r.wM.Unlock()
	return r.watcher != nil
}

func (r *Registry) add(h *Handle) {
	r.rwM.Lock()
	defer r.rwM.Unlock()
	r.handles[h] = struct{}{}
}

func (r *Registry) remove(h *Handle) {
	r.rwM.Lock()
	defer r.rwM.Unlock()
	delete(r.handles, h)
}

func (r *Registry) match(path string) []*Handle {
	r.rwM.RLock()
	defer r.rwM.RUnlock()

	var hs []*Handle
	for h := range r.handles {
		if h.path == path {
			hs = append(hs, h)
		}
	}
	return hs
}

// ensureWatcher
// start the shared watcher once, concurrent callers wait for the first one.
// a failed start is not remembered so the next registration tries again.
func (r *Registry) ensureWatcher() error {
	r.wM.Lock()
	defer r.wM.Unlock()

	if r.watcher != nil {
		return nil
	}
	if r.closed {
		return ErrRegistryClosed
	}

	if err := os.MkdirAll(r.base, 0o755); err != nil {
		return errors.Join(ErrWatcher, err)
	}

	w, err := internal.NewWatcher(r.base,
		internal.WithBufferSize(r.bufferSize),
		internal.WithCallbackFunction(r.dispatch))
	if err != nil {
		r.logger.Errorf("registry error :: got error %v on watching %s", err, r.base)
		return errors.Join(ErrWatcher, err)
	}

	r.logger.Infof("registry :: watching %s", r.base)
	r.watcher = w
	return nil
}

// Close
// stop the shared watcher, registrations after Close fail with
// ErrRegistryClosed. a callback may close the registry, the watcher then
// finishes its teardown once the callback returns.
func (r *Registry) Close() error {
	r.wM.Lock()
	w := r.watcher
	r.watcher = nil
	r.closed = true
	r.wM.Unlock()

	if w != nil {
		w.Close()
		r.logger.Infof("registry :: stopped watching %s", r.base)
	}
	return nil
}

// dispatch
// watcher hook, runs on the watcher delivery goroutine.
func (r *Registry) dispatch(e internal.Event, err error) {
	if err != nil {
		r.logger.Errorf("registry error :: got error %v from watcher on %s", err, r.base)
		return
	}

	if e.IsExit() || len(e.Name) == 0 {
		return
	}

	for _, h := range r.match(filepath.Clean(e.Name)) {
		h.notify(e)
	}
}

func (r *Registry) invoke(cb *Callback, c Change) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Errorf("registry error :: callback panic %v on change %s", p, c)
		}
	}()

	cb.fn(c)
}
