package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadLibc(t *testing.T) {
	out, err := run("load", "libc.so.6")
	require.NoError(t, err)
	require.Contains(t, out, "libc.so.6 => Library(0x")
}

func TestSym(t *testing.T) {
	out, err := run("sym", "--lib", "libc.so.6", "puts", "invalid_optional")
	require.NoError(t, err)
	require.Contains(t, out, "puts => 0x")
	require.Contains(t, out, "invalid_optional => missing")

	_, err = run("sym", "--lib", "libc.so.6", "--required", "puts", "invalid_required")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid_required")
}

func TestOrd(t *testing.T) {
	out, err := run("--dump", "ord", "--lib", "libc.so.6", "0x64")
	require.NoError(t, err)
	require.Contains(t, out, "@100 => missing")
	require.Contains(t, out, "Found: (bool) false")

	_, err = run("ord", "--lib", "libc.so.6", "--required", "100")
	require.ErrorContains(t, err, "@100")

	_, err = run("ord", "--lib", "libc.so.6", "70000")
	require.ErrorContains(t, err, "invalid ordinal")
}

func TestUnload(t *testing.T) {
	out, err := run("unload", "--lib", "libc.so.6")
	require.NoError(t, err)
	require.Contains(t, out, "libc.so.6 unloaded")
}
