package cl

import (
	"encoding/binary"
	"strings"
	"unsafe"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// Helpers for the "get info" entry points. All of them use the two-call protocol: the first call queries the size,
// the second one fills a buffer of that size.

const handleSize = int(unsafe.Sizeof(clapi.Handle(0)))

func (l *Library) infoBytes(class clapi.Class, h clapi.Handle, param uint32) ([]byte, error) {
	op := "clGet" + class.String() + "Info"
	size, st := l.api.GetInfo(class, h, param, nil)
	if err := nativeError(op, st); err != nil {
		return nil, errors.WithMessagef(err, "querying size of parameter 0x%x of %s", param, h)
	}
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	_, st = l.api.GetInfo(class, h, param, buf)
	if err := nativeError(op, st); err != nil {
		return nil, errors.WithMessagef(err, "querying parameter 0x%x of %s", param, h)
	}
	return buf, nil
}

func (l *Library) infoString(class clapi.Class, h clapi.Handle, param uint32) (string, error) {
	buf, err := l.infoBytes(class, h, param)
	if err != nil {
		return "", err
	}
	return cString(buf), nil
}

func (l *Library) infoUint32(class clapi.Class, h clapi.Handle, param uint32) (uint32, error) {
	buf, err := l.infoBytes(class, h, param)
	if err != nil {
		return 0, err
	}
	if len(buf) != 4 {
		return 0, internalErrorf("parameter 0x%x of %s has %d bytes, expected 4", param, h, len(buf))
	}
	return binary.NativeEndian.Uint32(buf), nil
}

func (l *Library) infoUint64(class clapi.Class, h clapi.Handle, param uint32) (uint64, error) {
	buf, err := l.infoBytes(class, h, param)
	if err != nil {
		return 0, err
	}
	switch len(buf) {
	case 8:
		return binary.NativeEndian.Uint64(buf), nil
	case 4:
		// size_t on 32 bits platforms.
		return uint64(binary.NativeEndian.Uint32(buf)), nil
	}
	return 0, internalErrorf("parameter 0x%x of %s has %d bytes, expected 8", param, h, len(buf))
}

func (l *Library) infoHandles(class clapi.Class, h clapi.Handle, param uint32) ([]clapi.Handle, error) {
	buf, err := l.infoBytes(class, h, param)
	if err != nil {
		return nil, err
	}
	return decodeHandles(buf)
}

func (l *Library) infoHandle(class clapi.Class, h clapi.Handle, param uint32) (clapi.Handle, error) {
	handles, err := l.infoHandles(class, h, param)
	if err != nil {
		return 0, err
	}
	if len(handles) != 1 {
		return 0, internalErrorf("parameter 0x%x of %s has %d handles, expected 1", param, h, len(handles))
	}
	return handles[0], nil
}

// referenceCount queries the native reference count of a handle.
func (l *Library) referenceCount(class clapi.Class, h clapi.Handle) (int, error) {
	param := class.ReferenceCountParam()
	if param == 0 {
		return 1, nil
	}
	count, err := l.infoUint32(class, h, param)
	return int(count), err
}

func decodeHandles(buf []byte) ([]clapi.Handle, error) {
	if len(buf)%handleSize != 0 {
		return nil, internalErrorf("list of handles with %d bytes is not a multiple of %d", len(buf), handleSize)
	}
	handles := make([]clapi.Handle, len(buf)/handleSize)
	for ii := range handles {
		chunk := buf[ii*handleSize : (ii+1)*handleSize]
		if handleSize == 8 {
			handles[ii] = clapi.Handle(binary.NativeEndian.Uint64(chunk))
		} else {
			handles[ii] = clapi.Handle(binary.NativeEndian.Uint32(chunk))
		}
	}
	return handles, nil
}

// cString converts a NUL terminated C string to Go.
func cString(buf []byte) string {
	s := string(buf)
	if idx := strings.IndexByte(s, 0); idx >= 0 {
		s = s[:idx]
	}
	return s
}
