// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package testutil locates the optional corpus-derived fixture
// directory used by larger, real-sample integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
)

// Path returns the path to the fixture directory holding real .nki/.nkm/
// .ncw sample files, based on the operating system, or "" if it isn't
// present on this machine. Tests that need real corpus files should skip
// with t.Skip when Path returns "".
func Path() string {
	var path string
	switch runtime.GOOS {
	case "windows":
		path = `d:\Workspace\Go\src\github.com\kelindar\ni-file-testdata`
	case "linux":
		path = `/mnt/d/Workspace/Go/src/github.com/kelindar/ni-file-testdata`
	}
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Fixture joins Path with the given relative name, for building a path
// to a specific corpus-derived file.
func Fixture(name string) string {
	return filepath.Join(Path(), name)
}
