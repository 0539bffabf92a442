package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(args ...string) (string, error) {
	var b bytes.Buffer
	err := newApp(&b).Run(append([]string{"inspect"}, args...))
	return b.String(), err
}

func TestMissingArguments(t *testing.T) {
	_, err := run("load")
	require.EqualError(t, err, "missing library list")
	_, err = run("sym")
	require.Error(t, err)
	_, err = run("sym", "--lib", "libc.so.6")
	require.EqualError(t, err, "missing symbol list")
	_, err = run("ord", "--lib", "libc.so.6")
	require.EqualError(t, err, "missing ordinal list")
}

func TestLoadFailure(t *testing.T) {
	_, err := run("load", "libdoes_not_exist_invalid.so")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does_not_exist_invalid")
}
