//go:build !darwin && !freebsd && !linux && !windows

package minidl

func unsupported(op, name string) error {
	return &Error{Op: op, Name: name, Kind: KindOther, Msg: "unable to " + op + " " + name + ": " + ErrUnsupported.Error(), Err: ErrUnsupported}
}

func openLibrary(path string) (uintptr, error) {
	return 0, unsupported("load", path)
}

func lookupSymbol(uintptr, string) uintptr {
	return 0
}

func lookupOrdinal(uintptr, uint16) uintptr {
	return 0
}

func closeLibrary(uintptr) error {
	return unsupported("unload", "library")
}
