//go:build darwin || freebsd || linux || windows

package minidl

import "github.com/ebitengine/purego"

// ResolveFunc binds the function variable pointed to by fptr to the C
// function name in lib, using purego's calling convention support:
//
//	var puts func(string) int32
//	err := minidl.ResolveFunc(libc, &puts, "puts\x00")
//
// The signature of *fptr is trusted, not checked. fptr must be a non-nil
// pointer to a func variable; anything else panics. On a missing symbol
// *fptr is left untouched.
func ResolveFunc(lib Library, fptr any, name string) error {
	p, err := lib.Symbol(name)
	if err != nil {
		return err
	}
	purego.RegisterFunc(fptr, p)
	return nil
}

// ResolveFuncByOrdinal is the ordinal form of [ResolveFunc].
func ResolveFuncByOrdinal(lib Library, fptr any, ordinal uint16) error {
	p, err := lib.SymbolByOrdinal(ordinal)
	if err != nil {
		return err
	}
	purego.RegisterFunc(fptr, p)
	return nil
}
