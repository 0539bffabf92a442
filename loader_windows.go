//go:build windows

package minidl

import (
	"errors"
	"fmt"
	"strconv"
	"syscall"

	"golang.org/x/sys/windows"
)

const (
	hostBits  = 32 << (^uintptr(0) >> 63)
	otherBits = 96 - hostBits
)

func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	if err == nil && h != 0 {
		return uintptr(h), nil
	}
	return 0, loadError(path, err)
}

func loadError(path string, err error) *Error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case windows.ERROR_BAD_EXE_FORMAT:
			return &Error{Op: "load", Name: path, Kind: KindBadFormat, Err: err,
				Msg: fmt.Sprintf("unable to load %s: ERROR_BAD_EXE_FORMAT (likely tried to load a %d-bit DLL into this %d-bit process)",
					path, otherBits, hostBits)}
		case windows.ERROR_MOD_NOT_FOUND:
			return &Error{Op: "load", Name: path, Kind: KindNotFound, Err: err,
				Msg: fmt.Sprintf("unable to load %s: NotFound", path)}
		default:
			return &Error{Op: "load", Name: path, Kind: KindOther, Err: err,
				Msg: fmt.Sprintf("%s (os error %d)", errno.Error(), uint32(errno))}
		}
	}
	if err == nil {
		return &Error{Op: "load", Name: path, Kind: KindOther, Msg: "unable to load " + path}
	}
	return &Error{Op: "load", Name: path, Kind: KindOther, Msg: err.Error(), Err: err}
}

func lookupSymbol(h uintptr, name string) uintptr {
	p, err := windows.GetProcAddress(windows.Handle(h), name)
	if err != nil {
		return 0
	}
	return p
}

// lookupOrdinal passes the ordinal in the low word, high word zero, as
// GetProcAddress requires.
func lookupOrdinal(h uintptr, ordinal uint16) uintptr {
	p, err := windows.GetProcAddressByOrdinal(windows.Handle(h), uintptr(ordinal))
	if err != nil {
		return 0
	}
	return p
}

func closeLibrary(h uintptr) error {
	if err := windows.FreeLibrary(windows.Handle(h)); err != nil {
		return &Error{Op: "unload", Name: "0x" + strconv.FormatUint(uint64(h), 16), Kind: KindUnload,
			Msg: err.Error(), Err: err}
	}
	return nil
}
