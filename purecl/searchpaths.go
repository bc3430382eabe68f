//go:build linux || darwin

/*
 *	Copyright 2024 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package purecl

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// This file holds the search of the OpenCL library, common to the different OSes.

// LibraryPathsEnv is the name of the environment variable that defines the search paths for the OpenCL library.
const LibraryPathsEnv = "OPENCL_LIBRARY_PATH"

// librarySearchPaths is set during initialization.
//
// The library is searched in the OPENCL_LIBRARY_PATH directory -- or directories, if it is a ":" separated list.
// If it is not set it will search in the standard libraries directories of the system (in linux in
// LD_LIBRARY_PATH and /etc/ld.so.conf file).
var librarySearchPaths []string

func init() {
	initSearchPaths()
}

func initSearchPaths() {
	clPaths, found := os.LookupEnv(LibraryPathsEnv)
	if !found {
		librarySearchPaths = osDefaultLibraryPaths()
	} else {
		librarySearchPaths = slices.DeleteFunc(strings.Split(clPaths, ":"), func(p string) bool {
			return p == "" // Remove empty paths.
		})
	}
}

// SearchPaths returns the directories where the OpenCL library is searched, in order.
func SearchPaths() []string {
	return slices.Clone(librarySearchPaths)
}

// searchLibrary returns the first existing file for the library name in the search paths.
func searchLibrary(name string) (string, bool) {
	for _, dir := range librarySearchPaths {
		for _, fileName := range osLibraryFileNames(name) {
			candidate := path.Join(dir, fileName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}

// dlopen the library: an absolute path, or a name searched in the search paths, and finally left for the system
// dynamic loader to resolve.
func dlopen(name string) (lib uintptr, libPath string, err error) {
	var candidates []string
	if path.IsAbs(name) {
		candidates = []string{name}
	} else {
		if found, ok := searchLibrary(name); ok {
			candidates = append(candidates, found)
		}
		candidates = append(candidates, osLibraryFileNames(name)...)
	}
	var errs []string
	for _, candidate := range candidates {
		klog.V(2).Infof("trying to load OpenCL library %s", candidate)
		lib, err = purego.Dlopen(candidate, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			libPath = candidate
			if abs, absErr := filepath.Abs(candidate); absErr == nil && strings.ContainsRune(candidate, '/') {
				libPath = abs
			}
			klog.V(1).Infof("loaded OpenCL library %s", libPath)
			return lib, libPath, nil
		}
		klog.Warningf("Failed to load %q: %v", candidate, err)
		errs = append(errs, err.Error())
	}
	return 0, "", errors.Errorf("OpenCL library %q not found in paths %v (set %s to the directories to search): %s",
		name, librarySearchPaths, LibraryPathsEnv, strings.Join(errs, "; "))
}
