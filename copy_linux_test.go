package minidl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func findLibm(t *testing.T) string {
	for _, p := range []string{
		"/lib/x86_64-linux-gnu/libm.so.6",
		"/usr/lib/x86_64-linux-gnu/libm.so.6",
		"/lib/aarch64-linux-gnu/libm.so.6",
		"/usr/lib/aarch64-linux-gnu/libm.so.6",
		"/lib64/libm.so.6",
		"/usr/lib64/libm.so.6",
		"/usr/lib/libm.so.6",
		"/lib/libm.so.6",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Skip("libm.so.6 not found")
	return ""
}

func TestLoadCopyLibrary(t *testing.T) {
	src := findLibm(t)
	dir := t.TempDir()
	lib, copied, err := LoadCopy(src, dir)
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(copied))
	require.Equal(t, filepath.Base(src), filepath.Base(copied))
	require.FileExists(t, copied)
	require.True(t, lib.HasSymbol("cos\x00"))
}

func TestLoadCopyTempDir(t *testing.T) {
	src := findLibm(t)
	base := t.TempDir()
	t.Setenv("TMPDIR", base)
	lib, copied, err := LoadCopy(src, "")
	require.NoError(t, err)
	tmp := filepath.Dir(copied)
	require.Equal(t, base, filepath.Dir(tmp))
	require.True(t, strings.HasPrefix(filepath.Base(tmp), "minidl-"), tmp)
	require.True(t, lib.HasSymbol("sin\x00"))
}

// /proc/self/mem opens fine but reading from offset 0 fails with EIO.
func TestLoadCopyReadFailure(t *testing.T) {
	base := t.TempDir()
	t.Setenv("TMPDIR", base)
	_, copied, err := LoadCopy("/proc/self/mem", "")
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindOther, e.Kind)
	require.Contains(t, err.Error(), "unable to copy /proc/self/mem")
	require.Empty(t, copied)
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Empty(t, entries, "temporary directory left behind")

	dest := t.TempDir()
	_, copied, err = LoadCopy("/proc/self/mem", dest)
	require.Error(t, err)
	require.Empty(t, copied)
	require.NoFileExists(t, filepath.Join(dest, "mem"))
}
