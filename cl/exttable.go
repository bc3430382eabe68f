package cl

import (
	"slices"
	"sync"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// ExtensionTable holds the optional entry points (version or extension gated) resolved for a platform.
//
// There is one table per platform, shared by all objects created from it. It is resolved lazily, on first use.
type ExtensionTable struct {
	lib      *Library
	platform clapi.Handle

	once    sync.Once
	procs   map[string]clapi.Proc
	missing map[string]error
}

func newExtensionTable(lib *Library, platform clapi.Handle) *ExtensionTable {
	return &ExtensionTable{lib: lib, platform: platform}
}

func (t *ExtensionTable) resolve() {
	t.once.Do(func() {
		t.procs = make(map[string]clapi.Proc)
		t.missing = make(map[string]error)
		for _, ep := range clapi.OptionalEntryPoints {
			if proc := t.lib.api.GetProcAddress(t.platform, ep.Name); proc.Available() {
				t.procs[ep.Name] = proc
				continue
			}
			if ep.Extension != "" {
				t.missing[ep.Name] = errors.Wrapf(ErrUnavailable, "%s extension address not found (requires %s)",
					ep.Name, ep.Extension)
			} else {
				t.missing[ep.Name] = errors.Wrapf(ErrUnavailable, "%s address not found (requires OpenCL version >= %s)",
					ep.Name, ep.MinVersion)
			}
		}
	})
}

// Proc returns the resolved entry point, or an error wrapping ErrUnavailable describing why it is missing.
func (t *ExtensionTable) Proc(name string) (clapi.Proc, error) {
	t.resolve()
	if proc, found := t.procs[name]; found {
		return proc, nil
	}
	if err, found := t.missing[name]; found {
		return 0, err
	}
	return 0, internalErrorf("%s is not a known optional entry point", name)
}

// Available returns whether the optional entry point is available.
func (t *ExtensionTable) Available(name string) bool {
	_, err := t.Proc(name)
	return err == nil
}

// Names returns the sorted names of the available optional entry points.
func (t *ExtensionTable) Names() []string {
	t.resolve()
	names := make([]string, 0, len(t.procs))
	for name := range t.procs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
