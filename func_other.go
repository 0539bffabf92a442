//go:build !darwin && !freebsd && !linux && !windows

package minidl

// ResolveFunc is unsupported on this platform.
func ResolveFunc(lib Library, fptr any, name string) error {
	return unsupported("resolve", name)
}

// ResolveFuncByOrdinal is unsupported on this platform.
func ResolveFuncByOrdinal(lib Library, fptr any, ordinal uint16) error {
	return unsupported("resolve", "@ordinal")
}
