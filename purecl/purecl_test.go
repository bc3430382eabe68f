//go:build linux || darwin

package purecl

import (
	"flag"
	"testing"

	"github.com/gomlx/gocl/clapi"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

var flagLibrary = flag.String("library", "OpenCL", "OpenCL library to test")

// openOrSkip opens the OpenCL library, or skips the test if it (or any platform) is not available.
func openOrSkip(t *testing.T) (*Runtime, []clapi.Handle) {
	rt, err := Open(*flagLibrary)
	if err != nil {
		t.Skipf("OpenCL library not available: %v", err)
	}
	count, st := rt.GetPlatformIDs(nil)
	if st != clapi.CL_SUCCESS || count == 0 {
		t.Skipf("No OpenCL platforms available (%s)", st)
	}
	platforms := make([]clapi.Handle, count)
	count, st = rt.GetPlatformIDs(platforms)
	require.Equal(t, clapi.CL_SUCCESS, st)
	return rt, platforms[:count]
}

func TestPlatformVersion(t *testing.T) {
	v := platformVersion{major: 2, minor: 1}
	require.True(t, v.atLeast("1.2"))
	require.True(t, v.atLeast("2.0"))
	require.True(t, v.atLeast("2.1"))
	require.False(t, v.atLeast("2.2"))
	require.False(t, v.atLeast("3.0"))
	require.False(t, v.atLeast("bogus"))
}

func TestSearchPaths(t *testing.T) {
	t.Cleanup(initSearchPaths) // Runs after the environment is restored.
	t.Setenv(LibraryPathsEnv, "/a::/b")
	initSearchPaths()
	require.Equal(t, []string{"/a", "/b"}, SearchPaths())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open("surely_not_an_opencl_library_name")
	require.Error(t, err)
}

func TestRuntime(t *testing.T) {
	rt, platforms := openOrSkip(t)
	for _, platform := range platforms {
		name, ok := rt.platformString(platform, clapi.CL_PLATFORM_NAME)
		require.True(t, ok)
		v := rt.platformVersion(platform)
		klog.Infof("Platform %q (%s): OpenCL %d.%d, %d extensions", name, platform, v.major, v.minor, len(v.extensions))
		require.GreaterOrEqual(t, v.major, 1)

		// Entry points gated by a version the platform doesn't support are never resolved.
		for _, ep := range clapi.OptionalEntryPoints {
			proc := rt.GetProcAddress(platform, ep.Name)
			if ep.MinVersion != "" && !v.atLeast(ep.MinVersion) {
				require.False(t, proc.Available(), "%s should not be available in OpenCL %d.%d", ep.Name, v.major, v.minor)
			}
		}
		require.False(t, rt.GetProcAddress(platform, "clNotAnEntryPoint").Available())
	}
}
