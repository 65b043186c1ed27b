package fileset

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/umlbuilder/internal/foundation/normalization"
)

// Mode selects how output directories are derived from input locations.
type Mode string

const (
	// Mirror reproduces the source tree below the output directory.
	Mirror Mode = "mirror"
	// Flatten writes every artifact directly into the output directory.
	Flatten Mode = "flatten"
	// CoLocate writes artifacts next to their source; the output directory is unused.
	CoLocate Mode = "colocate"
)

var modeNormalizer = normalization.NewNormalizer("placement mode", map[string]Mode{
	"mirror":    Mirror,
	"tree":      Mirror,
	"flatten":   Flatten,
	"flat":      Flatten,
	"colocate":  CoLocate,
	"co-locate": CoLocate,
	"in-source": CoLocate,
	"in_source": CoLocate,
})

// ParseMode parses a placement mode name; empty means Mirror.
func ParseMode(raw string) (Mode, error) {
	return modeNormalizer.NormalizeOr(raw, Mirror)
}

// ModeFromFlags maps the two boolean switches the configuration exposes onto a
// Mode. Setting both is rejected.
func ModeFromFlags(flatten, inSource bool) (Mode, error) {
	switch {
	case flatten && inSource:
		return "", fmt.Errorf("flatten and in-source placement are mutually exclusive")
	case inSource:
		return CoLocate, nil
	case flatten:
		return Flatten, nil
	default:
		return Mirror, nil
	}
}

// Placement couples a Mode with the output directory it applies to.
type Placement struct {
	Mode      Mode
	OutputDir string
}

// RequiresOutputDir reports whether OutputDir must be set.
func (p Placement) RequiresOutputDir() bool { return p.Mode != CoLocate }

// Sequential reports whether files must be processed one at a time. Flattened
// outputs may collide, and the last file in sorted order has to win.
func (p Placement) Sequential() bool { return p.Mode == Flatten }

// OutputDirFor returns the directory artifacts of input should be written to.
// input is absolute and rel is its path relative to the base, slash separated.
func (p Placement) OutputDirFor(input, rel string) string {
	switch p.Mode {
	case CoLocate:
		return filepath.Dir(input)
	case Flatten:
		return filepath.Clean(p.OutputDir)
	default:
		return filepath.Join(p.OutputDir, filepath.Dir(filepath.FromSlash(rel)))
	}
}
