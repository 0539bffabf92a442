package minidl

import (
	"errors"
	"io/fs"
)

// Kind classifies a loader failure.
type Kind int

const (
	KindOther          Kind = iota // any other OS-reported failure
	KindNotFound                   // library file could not be located
	KindBadFormat                  // library exists but is not loadable into this process
	KindInvalidInput               // argument rejected before reaching the loader
	KindSymbolNotFound             // required symbol or ordinal is absent
	KindUnload                     // the unload call itself failed
)

var kindNames = [...]string{
	KindOther:          "other",
	KindNotFound:       "not found",
	KindBadFormat:      "bad format",
	KindInvalidInput:   "invalid input",
	KindSymbolNotFound: "symbol not found",
	KindUnload:         "unload",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

var (
	// ErrNotFound matches load failures of KindNotFound.
	ErrNotFound = errors.New("library not found")
	// ErrBadFormat matches load failures of KindBadFormat.
	ErrBadFormat = errors.New("bad library format")
	// ErrInvalidInput matches failures of KindInvalidInput and KindSymbolNotFound.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSymbolNotFound matches resolve failures of KindSymbolNotFound.
	ErrSymbolNotFound = errors.New("missing symbol")
	// ErrUnload matches failures of KindUnload.
	ErrUnload = errors.New("unload failed")
	// ErrUnsupported occurs when the platform has no dynamic loader binding.
	ErrUnsupported = errors.New("dynamic loading unsupported on this platform")
)

// Error is the error returned by every fallible operation of this package.
//
// Error() returns Msg verbatim, so the failing path, symbol name or ordinal is
// always part of the text.
type Error struct {
	Op   string // load, resolve or unload
	Name string // path, symbol name or @ordinal
	Kind Kind
	Msg  string
	Err  error // underlying OS error, may be nil
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
// KindNotFound also matches [fs.ErrNotExist], KindSymbolNotFound also
// matches ErrInvalidInput.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound || target == fs.ErrNotExist
	case KindBadFormat:
		return target == ErrBadFormat
	case KindInvalidInput:
		return target == ErrInvalidInput
	case KindSymbolNotFound:
		return target == ErrSymbolNotFound || target == ErrInvalidInput
	case KindUnload:
		return target == ErrUnload
	}
	return false
}
