package fileset

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/umlbuilder/internal/workspace"
)

// ResolvedFile is one selected input together with the directory its artifacts
// are written to. Stale is filled in by the freshness check.
type ResolvedFile struct {
	Input     string // absolute path
	Rel       string // relative to the base, forward slashes
	OutputDir string // absolute path
	Stale     bool
}

// CheckBase verifies that dir exists and is a directory.
func CheckBase(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "source directory is not accessible").
			Fatal().UserAction().
			WithContext("base", dir).
			Build()
	}
	if !info.IsDir() {
		return errors.ConfigError("source path is not a directory").
			WithContext("base", dir).
			Build()
	}
	return nil
}

// Resolve enumerates the files selected by spec and computes each output
// directory using placement. The result is sorted by relative path.
func Resolve(ctx context.Context, spec InputSpec, placement Placement) ([]ResolvedFile, error) {
	base, err := filepath.Abs(spec.Base())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot make source directory absolute").
			Fatal().
			WithContext("base", spec.Base()).
			Build()
	}
	if err := CheckBase(base); err != nil {
		return nil, err
	}
	matcher, err := spec.Matcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid file pattern").
			Fatal().UserAction().
			Build()
	}
	if placement.RequiresOutputDir() {
		out, absErr := filepath.Abs(placement.OutputDir)
		if absErr != nil {
			return nil, errors.WrapError(absErr, errors.CategoryConfig, "cannot make output directory absolute").
				Fatal().
				WithContext("output", placement.OutputDir).
				Build()
		}
		placement.OutputDir = out
	}

	var files []ResolvedFile
	walkErr := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path == base {
				return nil
			}
			// Staging directories of interrupted runs hold partial engine output.
			if !spec.Recursive() || strings.HasPrefix(d.Name(), workspace.StagingPrefix) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isRegularFile(path, d) {
			return nil
		}
		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if !matcher.Match(rel) {
			return nil
		}
		files = append(files, ResolvedFile{
			Input:     path,
			Rel:       rel,
			OutputDir: placement.OutputDirFor(path, rel),
		})
		return nil
	})
	if walkErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.WrapError(walkErr, errors.CategoryFileSystem, "failed to enumerate source files").
			Fatal().
			WithContext("base", base).
			Build()
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// isRegularFile accepts regular files and symlinks that resolve to one.
// Dangling links and links to directories are skipped.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
