package minidl

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZenLiuCN/fn"
)

// CopyFile from src to dest with optional src file info
func CopyFile(src string, dest string, si fs.FileInfo) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fn.IgnoreClose(sf)
	df, err := os.Create(dest)
	if err != nil {
		return err
	}
	_, err = io.Copy(df, sf)
	if cerr := df.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		if si == nil {
			si, err = os.Stat(src)
			if err != nil {
				return
			}
		}
		err = os.Chmod(dest, si.Mode())
	}
	return
}

// LoadCopy copies the library file at path into dir and loads the copy, so
// the original file is never locked or mapped by this process. An empty dir
// means a fresh temporary directory. The path of the copy is returned; it
// must outlive the Library.
//
// path is a file path, not a name for the loader's search rules.
func LoadCopy(path, dir string) (lib Library, copied string, err error) {
	si, err := os.Stat(path)
	if err != nil {
		kind := KindOther
		if errors.Is(err, fs.ErrNotExist) {
			kind = KindNotFound
		}
		return lib, "", &Error{Op: "load", Name: path, Kind: kind, Msg: fmt.Sprintf("unable to copy %s: %v", path, err), Err: err}
	}
	if si.IsDir() {
		return lib, "", &Error{Op: "load", Name: path, Kind: KindInvalidInput, Msg: fmt.Sprintf("unable to copy %s: is a directory", path)}
	}
	temp := dir == ""
	if temp {
		if dir, err = os.MkdirTemp("", "minidl-"); err != nil {
			return lib, "", copyError(path, err)
		}
	}
	copied = filepath.Join(dir, filepath.Base(path))
	if err = CopyFile(path, copied, si); err != nil {
		if temp {
			_ = os.RemoveAll(dir)
		} else {
			_ = os.Remove(copied)
		}
		return lib, "", copyError(path, err)
	}
	logf("copied %s to %s", path, copied)
	if lib, err = Load(copied); err != nil {
		return lib, copied, err
	}
	return lib, copied, nil
}

func copyError(path string, err error) error {
	return &Error{Op: "load", Name: path, Kind: KindOther, Msg: fmt.Sprintf("unable to copy %s: %v", path, err), Err: err}
}
