//go:build darwin || freebsd || linux

package minidl

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	dlerrorOnce sync.Once
	dlerror     func() uintptr
)

// clearDlerror resets the dlerror slot of the calling thread, so the next
// dlerror reflects only the call that follows. Callers lock the OS thread.
func clearDlerror() {
	dlerrorOnce.Do(func() {
		p, err := purego.Dlsym(purego.RTLD_DEFAULT, "dlerror")
		if err != nil {
			logf("dlerror unavailable, stale errors are not cleared: %v", err)
			return
		}
		purego.RegisterFunc(&dlerror, p)
	})
	if dlerror != nil {
		dlerror()
	}
}

func openLibrary(path string) (uintptr, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	clearDlerror()
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err == nil && h != 0 {
		return h, nil
	}
	// dlerror already names the path
	return 0, &Error{Op: "load", Name: path, Kind: loadKind(path), Msg: dlerrorText(err, "unable to load "+path), Err: err}
}

// loadKind classifies a failed dlopen. Only explicit file paths can be told
// apart from a failed search of the loader's directories.
func loadKind(path string) Kind {
	if !strings.ContainsRune(path, '/') {
		return KindOther
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return KindNotFound
	}
	return KindOther
}

func lookupSymbol(h uintptr, name string) uintptr {
	p, err := purego.Dlsym(h, name)
	if err != nil {
		return 0
	}
	return p
}

func lookupOrdinal(uintptr, uint16) uintptr {
	return 0
}

func closeLibrary(h uintptr) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	clearDlerror()
	if err := purego.Dlclose(h); err != nil {
		return &Error{Op: "unload", Name: "0x" + strconv.FormatUint(uint64(h), 16), Kind: KindUnload,
			Msg: dlerrorText(err, "unable to unload library"), Err: err}
	}
	return nil
}

func dlerrorText(err error, fallback string) string {
	var msg string
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = fallback
	}
	return strings.ToValidUTF8(msg, "\uFFFD")
}
