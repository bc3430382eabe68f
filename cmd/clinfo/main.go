// clinfo lists the OpenCL platforms and devices of the installed runtime, the extensions they support and the
// optional entry points available for each platform.
//
// The runtime is loaded from the library given by -library, or from $GOCL_LIBRARY (default "OpenCL"), searched in
// $OPENCL_LIBRARY_PATH or in the standard library directories.
package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gocl/cl"
	"github.com/gomlx/gocl/clapi"
	"github.com/gomlx/gocl/purecl"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagLibrary = flag.String("library", "",
		"OpenCL library name (e.g. \"OpenCL\") or absolute path. If empty, it uses $GOCL_LIBRARY, or \"OpenCL\" if not set.")
	flagExtensions  = flag.Bool("extensions", false, "List the extensions of each platform and device.")
	flagEntryPoints = flag.Bool("entry_points", false, "List the optional entry points and whether they are available.")
	flagPaths       = flag.Bool("paths", false, "List the directories where the OpenCL library is searched, and exit.")
	flagFitWidth    = flag.Bool("fit", true, "Fit the tables to the terminal width.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *flagPaths {
		fmt.Println(titleStyle.Render("Search paths"))
		fmt.Println(strings.Join(purecl.SearchPaths(), "\n"))
		return
	}

	var lib *cl.Library
	var err error
	if *flagLibrary != "" {
		lib, err = cl.Load(*flagLibrary)
	} else {
		lib, err = cl.Default()
	}
	if err != nil {
		klog.Fatalf("Failed to load OpenCL: %+v", err)
	}
	defer lib.Close()

	platforms, err := lib.GetPlatforms()
	if err != nil {
		if st, ok := cl.StatusOf(err); ok && st == clapi.CL_PLATFORM_NOT_FOUND_KHR {
			fmt.Printf("No OpenCL platforms found in %s\n", lib)
			return
		}
		klog.Fatalf("Failed to list platforms: %+v", err)
	}
	fmt.Printf("%s: %d platform(s)\n", lib, len(platforms))
	for ii, platform := range platforms {
		reportPlatform(ii, platform)
	}
}

func reportPlatform(idx int, platform *cl.Platform) {
	name := must.M1(platform.Name())
	fmt.Println(titleStyle.Render(fmt.Sprintf("Platform #%d: %s", idx, name)))
	table := newTable(nil, "Property", "Value")
	table.Row("vendor", must.M1(platform.Vendor()))
	table.Row("version", must.M1(platform.Version()))
	extensions := must.M1(platform.ExtensionNames())
	table.Row("# extensions", humanize.Comma(int64(len(extensions))))
	fmt.Println(table.Render())

	devices, err := platform.GetDevices(clapi.DeviceTypeAll)
	if err != nil {
		klog.Errorf("Failed to list devices of %s: %v", name, err)
	} else {
		reportDevices(devices)
	}

	if *flagExtensions {
		fmt.Println(titleStyle.Render("Platform extensions"))
		fmt.Println(strings.Join(extensions, "\n"))
		for _, device := range devices {
			fmt.Println(titleStyle.Render(fmt.Sprintf("Device %s extensions", must.M1(device.Name()))))
			fmt.Println(strings.Join(must.M1(device.ExtensionNames()), "\n"))
			if kernels := must.M1(device.BuiltInKernels()); len(kernels) > 0 {
				fmt.Printf("built-in kernels: %s\n", strings.Join(kernels, ", "))
			}
		}
	}

	if *flagEntryPoints {
		reportEntryPoints(platform.Extensions())
	}
}

func reportDevices(devices []*cl.Device) {
	table := newTable(nil, "#", "Name", "Type", "Version", "Compute Units", "Global Memory", "Max Allocation", "Local Memory")
	for ii, device := range devices {
		table.Row(
			fmt.Sprintf("%d", ii),
			must.M1(device.Name()),
			deviceTypeName(must.M1(device.Type())),
			must.M1(device.Version()),
			humanize.Comma(int64(must.M1(device.MaxComputeUnits()))),
			humanize.IBytes(must.M1(device.GlobalMemSize())),
			humanize.IBytes(must.M1(device.InfoUint64(clapi.CL_DEVICE_MAX_MEM_ALLOC_SIZE))),
			humanize.IBytes(must.M1(device.InfoUint64(clapi.CL_DEVICE_LOCAL_MEM_SIZE))),
		)
	}
	fmt.Println(table.Render())
}

func reportEntryPoints(table *cl.ExtensionTable) {
	fmt.Println(titleStyle.Render("Optional entry points"))
	entryPoints := clapi.OptionalEntryPoints
	available := make([]bool, len(entryPoints))
	for ii, ep := range entryPoints {
		available[ii] = table.Available(ep.Name)
	}
	t := newTable(func(row int) bool { return !available[row] }, "Entry Point", "Requires", "Available")
	for ii, ep := range entryPoints {
		requires := ep.Extension
		if requires == "" {
			requires = "OpenCL " + ep.MinVersion
		}
		t.Row(ep.Name, requires, fmt.Sprintf("%v", available[ii]))
	}
	fmt.Println(t.Render())
}

func deviceTypeName(t clapi.DeviceType) string {
	var parts []string
	for _, bit := range []struct {
		t    clapi.DeviceType
		name string
	}{
		{clapi.DeviceTypeDefault, "default"},
		{clapi.DeviceTypeCPU, "CPU"},
		{clapi.DeviceTypeGPU, "GPU"},
		{clapi.DeviceTypeAccelerator, "accelerator"},
		{clapi.DeviceTypeCustom, "custom"},
	} {
		if t&bit.t != 0 {
			parts = append(parts, bit.name)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("0x%x", uint64(t))
	}
	return strings.Join(parts, "|")
}
