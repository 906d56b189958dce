package repo

import (
	"math"
	"os"
	"reflect"

	"github.com/odvcencio/grit/pkg/object"
)

// FileMeta is the stat snapshot recorded in the index for a staged
// file.
type FileMeta struct {
	Size      int64
	MTimeNano int64
	Mode      object.FileMode
	CTimeNano int64
}

// probeFileMeta extracts the index stat fields from info. The change
// time is not part of the portable FileInfo surface, so it is probed
// reflectively from Sys() and falls back to mtime where the platform
// offers none.
func probeFileMeta(info os.FileInfo) FileMeta {
	m := FileMeta{
		Size:      info.Size(),
		MTimeNano: info.ModTime().UnixNano(),
		Mode:      modeFromFileInfo(info),
	}
	if nano, ok := changeTimeUnixNano(info); ok {
		m.CTimeNano = nano
	} else {
		m.CTimeNano = m.MTimeNano
	}
	return m
}

// modeFromFileInfo maps any exec permission bit to the executable file
// mode.
func modeFromFileInfo(info os.FileInfo) object.FileMode {
	if info.Mode()&0o111 != 0 {
		return object.ModeExecutable
	}
	return object.ModeRegular
}

// filePermFromMode picks worktree permissions for a checked-out file.
func filePermFromMode(m object.FileMode) os.FileMode {
	if m == object.ModeExecutable {
		return 0o755
	}
	return 0o644
}

// changeTimeUnixNano digs the inode change time out of the platform
// specific Sys() value. Field names differ across unix variants (Ctim,
// Ctimespec, Ctime/CtimeNsec), so the probe goes by name rather than by
// build tag.
func changeTimeUnixNano(info os.FileInfo) (int64, bool) {
	v, ok := statStruct(info)
	if !ok {
		return 0, false
	}

	for _, name := range []string{"Ctim", "Ctimespec"} {
		if f := v.FieldByName(name); f.IsValid() {
			if nano, ok := timespecUnixNano(f); ok {
				return nano, true
			}
		}
	}

	sec, hasSec := intFieldByNames(v, "Ctime")
	nsec, hasNsec := intFieldByNames(v, "CtimeNsec", "Ctimensec")
	if hasSec && hasNsec {
		return sec*1_000_000_000 + nsec, true
	}
	return 0, false
}

func timespecUnixNano(v reflect.Value) (int64, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0, false
	}
	sec, hasSec := intFieldByNames(v, "Sec", "Tv_sec")
	nsec, hasNsec := intFieldByNames(v, "Nsec", "Tv_nsec")
	if !hasSec || !hasNsec {
		return 0, false
	}
	return sec*1_000_000_000 + nsec, true
}

func statStruct(info os.FileInfo) (reflect.Value, bool) {
	sys := info.Sys()
	if sys == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(sys)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v, true
}

func intFieldByNames(v reflect.Value, names ...string) (int64, bool) {
	for _, name := range names {
		f := v.FieldByName(name)
		if !f.IsValid() {
			continue
		}
		switch f.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return f.Int(), true
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if u := f.Uint(); u <= math.MaxInt64 {
				return int64(u), true
			}
		}
	}
	return 0, false
}
