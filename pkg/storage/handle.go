package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ManouchehrRasoulli/localstore/internal"
	"golang.org/x/crypto/blake2b"
)

const fileMode = 0o644

// Handle
// binds one storage item to its file under the registry base directory.
// the handle owns every stream it opened and closes the leftovers on Close.
type Handle struct {
	name     string
	path     string
	registry *Registry

	mu        sync.Mutex
	streams   map[io.Closer]struct{}
	callbacks map[Kind]map[*Callback]struct{}
	// present
	// last known existence of the file, primed on first registration and
	// kept up to date by watcher events.
	present bool
	primed  bool
	closed  bool
}

// NewHandle
// no filesystem access happens here, the handle joins the registry right away.
func NewHandle(r *Registry, obj Storable) *Handle {
	name := obj.FileName()
	h := Handle{
		name:     name,
		path:     filepath.Join(r.base, name),
		registry: r,
		streams:  make(map[io.Closer]struct{}),
		callbacks: map[Kind]map[*Callback]struct{}{
			Created: make(map[*Callback]struct{}),
			Updated: make(map[*Callback]struct{}),
			Deleted: make(map[*Callback]struct{}),
		},
	}

	r.add(&h)
	return &h
}

func (h *Handle) Name() string { return h.name }

func (h *Handle) Path() string { return h.path }

func (h *Handle) Exists() bool {
	fi, err := os.Stat(h.path)
	return err == nil && !fi.IsDir()
}

// OpenStreams number of streams opened through this handle and not closed yet.
func (h *Handle) OpenStreams() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams)
}

// Open
// open the file for reading, other processes may keep writing into it.
func (h *Handle) Open() (*Stream, error) {
	if h.isClosed() {
		return nil, ErrClosed
	}

	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, err
	}

	if fi, serr := f.Stat(); serr != nil || fi.IsDir() {
		_ = f.Close()
		if serr != nil {
			return nil, serr
		}
		return nil, ErrNotFound
	}

	s := &Stream{File: f, h: h}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = f.Close()
		return nil, ErrClosed
	}
	h.streams[s] = struct{}{}
	h.mu.Unlock()

	return s, nil
}

func (h *Handle) untrack(c io.Closer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.streams, c)
}

func (h *Handle) OnCreate(cb *Callback) error { return h.register(Created, cb) }

func (h *Handle) OnUpdate(cb *Callback) error { return h.register(Updated, cb) }

func (h *Handle) OnDelete(cb *Callback) error { return h.register(Deleted, cb) }

func (h *Handle) register(kind Kind, cb *Callback) error {
	if cb == nil || cb.fn == nil {
		return ErrNilCallback
	}
	if h.isClosed() {
		return ErrClosed
	}

	if err := h.registry.ensureWatcher(); err != nil {
		return err
	}

	exists := h.Exists()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if !h.primed {
		h.present = exists
		h.primed = true
	}
	h.callbacks[kind][cb] = struct{}{}
	return nil
}

// notify
// translate a watcher event into a change for this handle and run the
// callbacks registered for it, outside of the handle lock.
func (h *Handle) notify(e internal.Event) {
	var kind Kind

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}

	switch {
	case e.Has(internal.Remove) || e.Has(internal.Rename):
		kind = Deleted
		h.present = false
	case e.Has(internal.Create):
		// a create over a file we already know of is a replace, eg. rename over.
		kind = Created
		if h.present {
			kind = Updated
		}
		h.present = true
	case e.Has(internal.Write):
		kind = Updated
		h.present = true
	default:
		h.mu.Unlock()
		return
	}

	cbs := make([]*Callback, 0, len(h.callbacks[kind]))
	for cb := range h.callbacks[kind] {
		cbs = append(cbs, cb)
	}
	h.mu.Unlock()

	c := Change{Kind: kind, Name: h.name, Path: h.path}
	for _, cb := range cbs {
		h.registry.invoke(cb, c)
	}
}

// Save
// replace the file content with everything read from r. data goes to a
// temporary file next to the target which is then renamed over it, readers
// never see a partial file.
func (h *Handle) Save(r io.Reader) (err error) {
	if h.isClosed() {
		return ErrClosed
	}

	dir := filepath.Dir(h.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return errors.Join(ErrSave, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(h.path)+".tmp-*")
	if err != nil {
		return errors.Join(ErrSave, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return errors.Join(ErrSave, err)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Join(ErrSave, err)
	}
	if err = tmp.Chmod(fileMode); err != nil {
		return errors.Join(ErrSave, err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Join(ErrSave, err)
	}
	if err = os.Rename(tmp.Name(), h.path); err != nil {
		return errors.Join(ErrSave, err)
	}

	return nil
}

// Delete
// remove the backing file, fails with ErrNotFound when it is already gone.
// a directory at the item path counts as absent, the same as for Open.
func (h *Handle) Delete() error {
	if h.isClosed() {
		return ErrClosed
	}

	fi, err := os.Lstat(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrNotFound, err)
		}
		return err
	}
	if fi.IsDir() {
		return ErrNotFound
	}

	err = os.Remove(h.path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return errors.Join(ErrNotFound, err)
	}
	return err
}

// Digest BLAKE2b-256 sum of the current file content.
func (h *Handle) Digest() ([]byte, error) {
	if h.isClosed() {
		return nil, ErrClosed
	}

	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, err
	}
	defer f.Close()

	hash, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(hash, f); err != nil {
		return nil, err
	}

	return hash.Sum(nil), nil
}

// Close
// dispose the handle: close every tracked stream, collecting all failures,
// and leave the registry even if some stream failed. calling it again is a
// no-op.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true

	streams := make([]io.Closer, 0, len(h.streams))
	for s := range h.streams {
		streams = append(streams, s)
	}
	h.streams = make(map[io.Closer]struct{})
	h.mu.Unlock()

	var errs []error
	for _, s := range streams {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	h.registry.remove(h)

	if len(errs) > 0 {
		return &DisposeError{Name: h.name, Errs: errs}
	}
	return nil
}

func (h *Handle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Stream
// read stream opened by a handle, closing it releases it from the handle.
type Stream struct {
	*os.File
	h *Handle
}

func (s *Stream) Close() error {
	s.h.untrack(s)
	return s.File.Close()
}
