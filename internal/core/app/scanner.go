package app

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

// ScanSourceFiles walks the project root and returns every supported
// source file not matching an exclude pattern.
func (a *App) ScanSourceFiles() ([]string, error) {
	dirGlobs, fileGlobs, err := a.compileExcludes()
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(a.Config.Paths.ProjectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			for _, g := range dirGlobs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !a.analyzer.IsSupportedPath(path) {
			return nil
		}

		for _, g := range fileGlobs {
			if g.Match(base) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// FindManifests returns every package.json under the project root,
// honoring the directory excludes.
func (a *App) FindManifests() ([]string, error) {
	dirGlobs, _, err := a.compileExcludes()
	if err != nil {
		return nil, err
	}

	var manifests []string
	err = filepath.WalkDir(a.Config.Paths.ProjectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			for _, g := range dirGlobs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if base == "package.json" {
			manifests = append(manifests, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(manifests)
	return manifests, nil
}

func (a *App) compileExcludes() ([]glob.Glob, []glob.Glob, error) {
	dirGlobs := make([]glob.Glob, 0, len(a.Config.Exclude.Dirs))
	for _, p := range a.Config.Exclude.Dirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(a.Config.Exclude.Files))
	for _, p := range a.Config.Exclude.Files {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	return dirGlobs, fileGlobs, nil
}
