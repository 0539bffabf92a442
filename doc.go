/*
Package minidl is a minimal binding over the operating system's dynamic library loader,
without cgo (on Unix it is based on [purego]).

# License

Source codes are under Apache License Version 2.0.

# Underwater

 1. Windows uses LoadLibraryW, GetProcAddress and FreeLibrary. Unix uses dlopen, dlsym, dlerror and dlclose.
 2. A [Library] is loaded forever. It is a plain comparable value without finalizer or reference count,
    every copy is an alias of the same handle.
 3. Resolving a symbol trusts the caller about the type and calling convention of what is found.
    [Resolve] only checks the result type is pointer sized; [ResolveFunc] binds a Go func variable.
 4. Symbol names are passed through untouched: they must end with "\x00" and contain no other NUL.

# Notes

 1. Violated preconditions (result not pointer sized, unterminated names, zero Library) panic.
    Everything else the loader reports is returned as an [*Error], whose message contains the failing path,
    symbol name or ordinal.
 2. Ordinals resolve only on Windows. Elsewhere ordinal lookups report the symbol missing.
 3. [Library.UnsafeUnload] exists for testing the unloading of libraries only. Read its documentation.

# Samples

	libc, err := minidl.Load("libc.so.6")
	if err != nil {
		return err
	}
	var puts func(string) int32
	if err = minidl.ResolveFunc(libc, &puts, "puts\x00"); err != nil {
		return err
	}
	puts("Hello, world!")

See the pool package for a generation checked variant, and the inspect tool for command line usage:

	go install github.com/ZenLiuCN/minidl/inspect@latest

[purego]: https://github.com/ebitengine/purego
*/
package minidl
