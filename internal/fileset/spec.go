package fileset

import (
	"path/filepath"
	"slices"
)

// DefaultInclude is used when a FileSet carries no include patterns.
const DefaultInclude = "**/*.puml"

// SourcePattern selects the files of a SingleDirectory input.
const SourcePattern = "*.{txt,tex,java,htm,html,c,h,cpp,apt,pu,puml,plantuml,hpp,hh}"

// InputSpec describes where diagram sources come from. It is implemented by
// SingleDirectory and FileSet only.
type InputSpec interface {
	// Base is the directory relative paths are computed against.
	Base() string
	// Recursive reports whether subdirectories are scanned.
	Recursive() bool
	// Matcher builds the include/exclude predicate for this input.
	Matcher() (*Matcher, error)

	isInputSpec()
}

// SingleDirectory is the legacy input style: one directory, no recursion.
type SingleDirectory struct {
	Path string
}

func (s SingleDirectory) Base() string    { return filepath.Clean(s.Path) }
func (s SingleDirectory) Recursive() bool { return false }
func (s SingleDirectory) isInputSpec()    {}

func (s SingleDirectory) Matcher() (*Matcher, error) {
	return NewMatcher([]string{SourcePattern}, nil)
}

// FileSet selects files below Dir with include and exclude globs.
type FileSet struct {
	Dir      string
	Includes []string
	Excludes []string
}

func (f FileSet) Base() string    { return filepath.Clean(f.Dir) }
func (f FileSet) Recursive() bool { return true }
func (f FileSet) isInputSpec()    {}

func (f FileSet) Matcher() (*Matcher, error) {
	includes := f.Includes
	if len(includes) == 0 {
		includes = []string{DefaultInclude}
	}
	return NewMatcher(includes, f.Excludes)
}

// Clone returns a FileSet that shares no slices with f.
func (f FileSet) Clone() FileSet {
	return FileSet{
		Dir:      f.Dir,
		Includes: slices.Clone(f.Includes),
		Excludes: slices.Clone(f.Excludes),
	}
}
