package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/absfs/osfs"
)

// openRoot returns the local filesystem with its working directory set to
// root, and root as an absolute native path. Everything the command touches
// is addressed relative to that working directory.
func openRoot(root string) (*osfs.FileSystem, string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, "", err
	}
	disk, err := osfs.NewFS()
	if err != nil {
		return nil, "", err
	}
	if err := disk.Chdir(osfs.FromNative(abs)); err != nil {
		return nil, "", err
	}
	return disk, abs, nil
}

// toFSPaths turns command line FILE arguments into slash separated paths
// relative to root. Relative arguments are taken relative to root; absolute
// ones must lie inside it. Nothing may climb out of root.
func toFSPaths(root string, files []string) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, file := range files {
		name, err := toFSPath(root, file)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func toFSPath(root, file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("%w: empty FILE argument", errUsage)
	}
	rel := file
	if filepath.IsAbs(file) {
		var err error
		rel, err = filepath.Rel(root, file)
		if err != nil {
			return "", fmt.Errorf("%w: %s is outside %s", errUsage, file, root)
		}
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." {
		return "", fmt.Errorf("%w: %s is a directory", errUsage, file)
	}
	if rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %s is outside %s", errUsage, file, root)
	}
	return rel, nil
}
