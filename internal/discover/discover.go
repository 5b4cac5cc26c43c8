// Package discover finds source and documentation files in a repository.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/RBusarow/Doks/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // Relative to repo root
	Language string
}

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".gradle":      {},
	".idea":        {},
	"node_modules": {},
	"build":        {},
	"dist":         {},
	"out":          {},
}

// Sources discovers parseable source files under the configured roots.
// Results are repo-root-relative and sorted.
func Sources(root string, roots []string) ([]FileEntry, error) {
	var results []FileEntry
	err := walkRoots(root, roots, func(rel string) {
		langName := lang.ForExtension(filepath.Ext(rel))
		if langName == "" {
			return
		}
		results = append(results, FileEntry{Path: rel, Language: langName})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

// Docs discovers documentation files with one of the given extensions under
// the configured paths. Results are repo-root-relative and sorted.
func Docs(root string, paths []string, extensions []string) ([]string, error) {
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[ext] = struct{}{}
	}

	var results []string
	err := walkRoots(root, paths, func(rel string) {
		if _, ok := extSet[filepath.Ext(rel)]; ok {
			results = append(results, rel)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

// walkRoots walks each configured subdirectory of root, calling visit with
// the root-relative path of every candidate file. Gitignored files, hidden
// files, symlinks, and well-known build directories are skipped.
func walkRoots(root string, subdirs []string, visit func(rel string)) error {
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	seen := make(map[string]struct{})

	for _, sub := range subdirs {
		base := filepath.Join(root, sub)
		info, err := os.Stat(base)
		if err != nil || !info.IsDir() {
			continue
		}

		err = filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // skip errors
			}

			name := d.Name()

			if d.IsDir() {
				if path == base {
					return nil
				}
				if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}

			if strings.HasPrefix(name, ".") {
				return nil
			}

			// Skip symlinks
			if d.Type()&os.ModeSymlink != 0 {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}

			if gitFiles != nil {
				if _, ok := gitFiles[rel]; !ok {
					return nil
				}
			} else if gi != nil && gi.MatchesPath(rel) {
				return nil
			}

			if _, dup := seen[rel]; dup {
				return nil
			}
			seen[rel] = struct{}{}

			visit(rel)
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
