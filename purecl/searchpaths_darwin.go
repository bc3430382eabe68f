//go:build darwin

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
	"strings"
)

// osDefaultLibraryPaths is called during initialization to set the default search paths: the system frameworks
// plus the contents of the DYLD_LIBRARY_PATH and LD_LIBRARY_PATH.
func osDefaultLibraryPaths() []string {
	paths := []string{"/System/Library/Frameworks"}
	for _, varName := range []string{"DYLD_LIBRARY_PATH", "LD_LIBRARY_PATH"} {
		for _, ldPath := range strings.Split(os.Getenv(varName), string(os.PathListSeparator)) {
			if ldPath == "" || !path.IsAbs(ldPath) {
				// No empty or relative paths.
				continue
			}
			paths = append(paths, ldPath)
		}
	}
	return append(paths, "/usr/local/lib", "/opt/homebrew/lib")
}

// osLibraryFileNames returns the file names to try for the library name.
func osLibraryFileNames(name string) []string {
	if strings.Contains(name, ".dylib") || strings.Contains(name, ".framework") {
		return []string{name}
	}
	return []string{name + ".framework/" + name, "lib" + name + ".dylib"}
}
