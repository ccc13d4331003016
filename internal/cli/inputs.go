package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Inputs expands command line arguments into the list of files to process.
//
// Regular files are taken as given. Directories are searched recursively for
// files ending in ".epub" (in any case) if walk is set and skipped
// otherwise. Arguments that do not exist, and directories that cannot be
// read, produce a warning and are left out.
func Inputs(args []string, walk bool) (files []string, warnings []string) {
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", arg, err))
			continue
		}
		if !fi.IsDir() {
			files = append(files, arg)
			continue
		}
		if !walk {
			warnings = append(warnings, fmt.Sprintf("skipping directory %s", arg))
			continue
		}
		found, w := walkEPUBs(arg)
		files = append(files, found...)
		warnings = append(warnings, w...)
	}
	tracer().Debugf("%d arguments expanded to %d files", len(args), len(files))
	return files, warnings
}

func walkEPUBs(root string) (files []string, warnings []string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsEPUBName(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, warnings
}

// IsEPUBName reports whether name has the extension ".epub", ignoring case.
func IsEPUBName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".epub")
}
