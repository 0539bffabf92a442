package minidl

import (
	"fmt"
	"log"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"unsafe"
)

// Library is a handle to a loaded dynamic library.
//
// A Library is a plain value: copies are equal aliases of the same handle, it
// is comparable and may be used as a map key. It has no finalizer and no
// reference count; a loaded library lives until the process exits unless
// [Library.UnsafeUnload] is called. The zero Library is not a valid handle.
//
// A Library may be used from many goroutines at once.
type Library struct {
	h uintptr
}

const (
	ptrSize = unsafe.Sizeof(uintptr(0))

	panicNotPointerSized = "minidl: symbol result is not pointer sized"
	panicFuncResult      = "minidl: symbol result is a Go func, bind functions with ResolveFunc"
	panicUnterminated    = "minidl: symbol name must end with '\\x00'"
	panicInteriorNul     = "minidl: symbol name mustn't contain '\\x00', except to terminate the string"
	panicZeroLibrary     = "minidl: use of zero Library"
)

var debug atomic.Bool

// SetDebug enables or disables debug logging of loader activity.
func SetDebug(v bool) {
	debug.Store(v)
}

// Debug reports whether debug logging is enabled.
func Debug() bool {
	return debug.Load()
}

func logf(format string, args ...any) {
	if debug.Load() {
		log.Printf("minidl: "+format, args...)
	}
}

// Load loads the library at path, forever.
//
//	Windows  LoadLibraryW(path)
//	Unix     dlopen(path, RTLD_NOW|RTLD_LOCAL)
//
// The returned error is an [*Error] whose message names path.
func Load(path string) (Library, error) {
	if strings.IndexByte(path, 0) >= 0 {
		return Library{}, &Error{Op: "load", Name: path, Kind: KindInvalidInput,
			Msg: fmt.Sprintf("unable to load %q: path contains NUL", path)}
	}
	h, err := openLibrary(path)
	if err == nil && h == 0 {
		err = &Error{Op: "load", Name: path, Kind: KindOther, Msg: "unable to load " + path}
	}
	if err != nil {
		logf("load %s: %v", path, err)
		return Library{}, err
	}
	logf("loaded %s as %#x", path, h)
	return Library{h: h}, nil
}

// FromPtr wraps a handle obtained elsewhere, e.g. from LoadLibraryW or dlopen
// called through another binding. It reports false for a zero handle.
//
// The handle must stay loaded for as long as the Library is used.
func FromPtr(handle uintptr) (Library, bool) {
	if handle == 0 {
		return Library{}, false
	}
	return Library{h: handle}, true
}

// Ptr returns the raw platform handle for interop. Don't unload through it.
func (l Library) Ptr() uintptr {
	return l.h
}

func (l Library) String() string {
	return "Library(0x" + strconv.FormatUint(uint64(l.h), 16) + ")"
}

func (l Library) mustHandle() {
	if l.h == 0 {
		panic(panicZeroLibrary)
	}
}

// SymbolOptional looks up name in the library and returns its raw address.
// The name must end with "\x00" and contain no other NUL; basic ASCII is
// the portable choice.
//
//	Windows  GetProcAddress(..., name)
//	Unix     dlsym(..., name)
func (l Library) SymbolOptional(name string) (uintptr, bool) {
	sym := checkName(name)
	l.mustHandle()
	p := lookupSymbol(l.h, sym)
	return p, p != 0
}

// Symbol is like [Library.SymbolOptional] but fails with a
// [KindSymbolNotFound] error naming the symbol.
func (l Library) Symbol(name string) (uintptr, error) {
	p, ok := l.SymbolOptional(name)
	if !ok {
		return 0, missingSymbol(name[:len(name)-1])
	}
	logf("resolved %s in %s: %#x", name[:len(name)-1], l, p)
	return p, nil
}

// HasSymbol reports whether name resolves in the library.
func (l Library) HasSymbol(name string) bool {
	_, ok := l.SymbolOptional(name)
	return ok
}

// SymbolOptionalByOrdinal looks up an export by ordinal. Only Windows
// resolves ordinals; elsewhere it always reports false.
//
// Ordinals are typically unstable between versions of the same DLL; prefer
// names when they are available.
func (l Library) SymbolOptionalByOrdinal(ordinal uint16) (uintptr, bool) {
	l.mustHandle()
	p := lookupOrdinal(l.h, ordinal)
	return p, p != 0
}

// SymbolByOrdinal is like [Library.SymbolOptionalByOrdinal] but fails with a
// [KindSymbolNotFound] error naming the ordinal.
func (l Library) SymbolByOrdinal(ordinal uint16) (uintptr, error) {
	p, ok := l.SymbolOptionalByOrdinal(ordinal)
	if !ok {
		return 0, missingOrdinal(ordinal)
	}
	return p, nil
}

// UnsafeUnload attempts to unload the library.
//
//	Windows  FreeLibrary(...)
//	Unix     dlclose(...)
//
// This is fundamentally unsound and may do nothing at all. When it does
// something, it invalidates every copy of l and every address or function
// previously resolved from it, including through other aliases. Threads
// still running library code, callbacks and signal handlers the library
// registered, and references to its static data all dangle; nothing in
// this package can detect that. Musl never unloads, RTLD_NODELETE and
// GET_MODULE_HANDLE_EX_FLAG_PIN turn unloading into a no-op.
//
// Restarting the process, using a subprocess, or leaking the library
// (see [LoadCopy] to avoid locking the original file) are the alternatives.
// This exists for testing the unloading of libraries, not for production.
func (l Library) UnsafeUnload() error {
	l.mustHandle()
	if err := closeLibrary(l.h); err != nil {
		logf("unload %s: %v", l, err)
		return err
	}
	logf("unloaded %s", l)
	return nil
}

// Resolve looks up name and reinterprets its address, bit for bit, as T.
//
// T must be pointer sized: uintptr, unsafe.Pointer or a pointer to the data
// layout the caller asserts the symbol has. Nothing checks that assertion.
// Functions are bound with [ResolveFunc] instead, since a Go func value is
// not a code address. Violated preconditions panic.
func Resolve[T any](lib Library, name string) (T, error) {
	checkResult[T]()
	p, err := lib.Symbol(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](p), nil
}

// ResolveOptional is like [Resolve] but reports a missing symbol with false.
func ResolveOptional[T any](lib Library, name string) (T, bool) {
	checkResult[T]()
	p, ok := lib.SymbolOptional(name)
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](p), true
}

// ResolveByOrdinal is the ordinal form of [Resolve].
func ResolveByOrdinal[T any](lib Library, ordinal uint16) (T, error) {
	checkResult[T]()
	p, err := lib.SymbolByOrdinal(ordinal)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](p), nil
}

// ResolveOptionalByOrdinal is the ordinal form of [ResolveOptional].
func ResolveOptionalByOrdinal[T any](lib Library, ordinal uint16) (T, bool) {
	checkResult[T]()
	p, ok := lib.SymbolOptionalByOrdinal(ordinal)
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](p), true
}

// as converts a resolved address to the contract type
func as[T any](p uintptr) T {
	return *(*T)(unsafe.Pointer(&p))
}

func checkResult[T any]() {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Size() != ptrSize {
		panic(panicNotPointerSized)
	}
	if t.Kind() == reflect.Func {
		panic(panicFuncResult)
	}
}

// checkName validates a terminated symbol name and returns it without the
// terminator.
func checkName(name string) string {
	n := len(name)
	if n == 0 || name[n-1] != 0 {
		panic(panicUnterminated)
	}
	if strings.IndexByte(name[:n-1], 0) >= 0 {
		panic(panicInteriorNul)
	}
	return name[:n-1]
}

func missingSymbol(name string) error {
	return &Error{Op: "resolve", Name: name, Kind: KindSymbolNotFound,
		Msg: fmt.Sprintf("symbol %q missing from library", name)}
}

func missingOrdinal(ordinal uint16) error {
	return &Error{Op: "resolve", Name: "@" + strconv.Itoa(int(ordinal)), Kind: KindSymbolNotFound,
		Msg: fmt.Sprintf("symbol @%d missing from library", ordinal)}
}
