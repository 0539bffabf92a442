package pool

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/minidl"
)

// Backend is the loader a Pool drives.
type Backend interface {
	Load(path string) (minidl.Library, error)
	Lookup(lib minidl.Library, name string) (uintptr, bool) // name is terminated with "\x00"
	Unload(lib minidl.Library) error
}

type system struct{}

func (system) Load(path string) (minidl.Library, error) { return minidl.Load(path) }
func (system) Lookup(lib minidl.Library, name string) (uintptr, bool) {
	return lib.SymbolOptional(name)
}
func (system) Unload(lib minidl.Library) error { return lib.UnsafeUnload() }

// System is the Backend of the operating system loader.
var System Backend = system{}

// Module is one generation of a loaded path.
type Module struct {
	Path       string
	Library    minidl.Library
	Generation uint64
}

// Ref identifies a path at the generation it was loaded with.
type Ref struct {
	Path       string
	Generation uint64
}

// Pool tracks loaded libraries by path and guards against use after unload:
// every load gets a new generation, and using a Ref whose generation has been
// unloaded or reloaded panics with ErrStale instead of touching a dangling
// handle.
//
// This only covers lookups made through the Pool. Addresses and functions
// obtained before an unload still dangle.
type Pool struct {
	backend Backend
	Modules map[string]*Module
	next    uint64
	sync.RWMutex
}

var (
	ErrAlreadyLoad   = errors.New("module already loaded")
	ErrNotLoad       = errors.New("module not loaded")
	ErrStale         = errors.New("module generation unloaded")
	ErrMissingSymbol = errors.New("missing symbol")
)

// NewPool create new pool, a nil backend means System.
func NewPool(backend Backend) *Pool {
	if backend == nil {
		backend = System
	}
	return &Pool{backend: backend, Modules: make(map[string]*Module)}
}

// Load a path not loaded yet.
func (p *Pool) Load(path string) (r Ref, err error) {
	p.Lock()
	defer p.Unlock()
	if _, ok := p.Modules[path]; ok {
		return r, ErrAlreadyLoad
	}
	return p.load(path)
}

func (p *Pool) load(path string) (r Ref, err error) {
	lib, err := p.backend.Load(path)
	if err != nil {
		return
	}
	p.next++
	p.Modules[path] = &Module{Path: path, Library: lib, Generation: p.next}
	return Ref{Path: path, Generation: p.next}, nil
}

// Reload unloads a loaded path and loads it again under a new generation.
// The old generation is retired even when unloading fails.
func (p *Pool) Reload(path string) (r Ref, err error) {
	p.Lock()
	defer p.Unlock()
	m, ok := p.Modules[path]
	if !ok {
		return r, ErrNotLoad
	}
	delete(p.Modules, path)
	if err = p.backend.Unload(m.Library); err != nil {
		return r, fmt.Errorf("reload %s: %w", path, err)
	}
	return p.load(path)
}

// Unload a loaded path and retire its generation.
func (p *Pool) Unload(path string) error {
	p.Lock()
	defer p.Unlock()
	m, ok := p.Modules[path]
	if !ok {
		return ErrNotLoad
	}
	delete(p.Modules, path)
	return p.backend.Unload(m.Library)
}

// Check reports whether r still refers to the loaded generation of its path.
func (p *Pool) Check(r Ref) bool {
	p.RLock()
	defer p.RUnlock()
	m, ok := p.Modules[r.Path]
	return ok && m.Generation == r.Generation
}

func (p *Pool) current(r Ref) *Module {
	m, ok := p.Modules[r.Path]
	if !ok || m.Generation != r.Generation {
		panic(fmt.Errorf("%w: %s@%d", ErrStale, r.Path, r.Generation))
	}
	return m
}

// Lookup fetch symbol address from the generation of r, name is a plain Go string.
func (p *Pool) Lookup(r Ref, name string) (uintptr, bool) {
	p.RLock()
	defer p.RUnlock()
	return p.backend.Lookup(p.current(r).Library, name+"\x00")
}

// Require fetch symbol address from the generation of r, panics if absent.
// Functions are bound with purego.RegisterFunc on the result.
func (p *Pool) Require(r Ref, name string) uintptr {
	u, ok := p.Lookup(r, name)
	if !ok {
		panic(fmt.Errorf("%w: %s in %s", ErrMissingSymbol, name, r.Path))
	}
	return u
}

// Paths of loaded modules, sorted.
func (p *Pool) Paths() []string {
	p.RLock()
	defer p.RUnlock()
	v := fn.MapKeys(p.Modules)
	slices.Sort(v)
	return v
}
