package pool

import (
	"errors"
	"testing"

	"github.com/ZenLiuCN/minidl"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	next       uintptr
	symbols    map[string]uintptr
	unloaded   []minidl.Library
	failLoad   error
	failUnload error
}

func (f *fakeBackend) Load(path string) (minidl.Library, error) {
	if f.failLoad != nil {
		return minidl.Library{}, f.failLoad
	}
	f.next += 0x1000
	lib, _ := minidl.FromPtr(f.next)
	return lib, nil
}

func (f *fakeBackend) Lookup(lib minidl.Library, name string) (uintptr, bool) {
	p, ok := f.symbols[name]
	if !ok {
		return 0, false
	}
	return lib.Ptr() + p, true
}

func (f *fakeBackend) Unload(lib minidl.Library) error {
	if f.failUnload != nil {
		return f.failUnload
	}
	f.unloaded = append(f.unloaded, lib)
	return nil
}

func newFake() *fakeBackend {
	return &fakeBackend{symbols: map[string]uintptr{"Run\x00": 0x10, "Const\x00": 0x20}}
}

func TestPoolLoad(t *testing.T) {
	p := NewPool(newFake())
	r, err := p.Load("libsample.so")
	require.NoError(t, err)
	require.True(t, p.Check(r))
	require.Equal(t, uintptr(0x1010), p.Require(r, "Run"))
	_, ok := p.Lookup(r, "Missing")
	require.False(t, ok)

	_, err = p.Load("libsample.so")
	require.ErrorIs(t, err, ErrAlreadyLoad)

	_, err = p.Load("libother.so")
	require.NoError(t, err)
	require.Equal(t, []string{"libother.so", "libsample.so"}, p.Paths())
	sp := spew.NewDefaultConfig()
	sp.MaxDepth = 3
	t.Log(sp.Sdump(p.Modules))
}

func TestPoolRequireMissing(t *testing.T) {
	p := NewPool(newFake())
	r, err := p.Load("libsample.so")
	require.NoError(t, err)
	defer func() {
		err, _ := recover().(error)
		require.ErrorIs(t, err, ErrMissingSymbol)
		require.Contains(t, err.Error(), "Missing")
	}()
	p.Require(r, "Missing")
}

func TestPoolReload(t *testing.T) {
	f := newFake()
	p := NewPool(f)
	old, err := p.Load("libsample.so")
	require.NoError(t, err)
	cur, err := p.Reload("libsample.so")
	require.NoError(t, err)
	require.Greater(t, cur.Generation, old.Generation)
	require.False(t, p.Check(old))
	require.True(t, p.Check(cur))
	require.Len(t, f.unloaded, 1)
	require.Equal(t, uintptr(0x2020), p.Require(cur, "Const"))

	require.PanicsWithError(t, "module generation unloaded: libsample.so@1", func() { p.Require(old, "Run") })

	_, err = p.Reload("libnone.so")
	require.ErrorIs(t, err, ErrNotLoad)
}

func TestPoolUnload(t *testing.T) {
	f := newFake()
	p := NewPool(f)
	r, err := p.Load("libsample.so")
	require.NoError(t, err)
	require.NoError(t, p.Unload("libsample.so"))
	require.False(t, p.Check(r))
	require.Empty(t, p.Paths())
	require.ErrorIs(t, p.Unload("libsample.so"), ErrNotLoad)
	require.Panics(t, func() { p.Lookup(r, "Run") })

	again, err := p.Load("libsample.so")
	require.NoError(t, err)
	require.NotEqual(t, r.Generation, again.Generation)
	require.False(t, p.Check(r))
}

func TestPoolLoadFailure(t *testing.T) {
	f := newFake()
	f.failLoad = errors.New("no such library")
	p := NewPool(f)
	_, err := p.Load("libsample.so")
	require.EqualError(t, err, "no such library")
	require.Empty(t, p.Paths())
}

func TestNewPoolDefault(t *testing.T) {
	require.Equal(t, System, NewPool(nil).backend)
}

func TestPoolUnloadFailure(t *testing.T) {
	f := newFake()
	p := NewPool(f)
	r, err := p.Load("libsample.so")
	require.NoError(t, err)
	f.failUnload = &minidl.Error{Op: "unload", Kind: minidl.KindUnload, Msg: "shared object not open"}
	_, err = p.Reload("libsample.so")
	require.ErrorIs(t, err, minidl.ErrUnload)
	require.EqualError(t, err, "reload libsample.so: shared object not open")
	require.False(t, p.Check(r))
	require.Empty(t, p.Paths())
}
