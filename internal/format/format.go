// Package format enumerates the output formats the diagram engine can produce,
// together with the engine flag selecting each one and the file suffix the
// engine gives to the artifacts it writes.
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/umlbuilder/internal/foundation/normalization"
)

// ErrUnsupported is wrapped by every parse failure.
var ErrUnsupported = errors.New("unsupported output format")

// Format identifies one rendering target.
type Format string

const (
	XMI     Format = "xmi"
	XMIArgo Format = "xmi:argo"
	XMIStar Format = "xmi:star"
	EPS     Format = "eps"
	SVG     Format = "svg"
	PNG     Format = "png"
	PDF     Format = "pdf"
	ATXT    Format = "txt"
	UTXT    Format = "utxt"
)

// Default is used when no format is configured.
const Default = PNG

type spec struct {
	flag        string
	suffix      string
	description string
}

var specs = map[Format]spec{
	XMI:     {flag: "-txmi", suffix: ".xmi", description: "XMI (standard exchange format)"},
	XMIArgo: {flag: "-txmi:argo", suffix: ".xmi", description: "XMI for ArgoUML"},
	XMIStar: {flag: "-txmi:star", suffix: ".xmi", description: "XMI for StarUML"},
	EPS:     {flag: "-teps", suffix: ".eps", description: "Encapsulated PostScript"},
	SVG:     {flag: "-tsvg", suffix: ".svg", description: "SVG vector image"},
	PNG:     {flag: "-tpng", suffix: ".png", description: "PNG bitmap image"},
	PDF:     {flag: "-tpdf", suffix: ".pdf", description: "PDF document"},
	ATXT:    {flag: "-ttxt", suffix: ".atxt", description: "ASCII art text"},
	UTXT:    {flag: "-tutxt", suffix: ".utxt", description: "Unicode art text"},
}

// "xmi:start" is the historic spelling accepted by the Maven goal.
var normalizer = normalization.NewNormalizer("output format", map[string]Format{
	"xmi":       XMI,
	"xmi:argo":  XMIArgo,
	"xmi:star":  XMIStar,
	"xmi:start": XMIStar,
	"eps":       EPS,
	"svg":       SVG,
	"png":       PNG,
	"pdf":       PDF,
	"txt":       ATXT,
	"atxt":      ATXT,
	"utxt":      UTXT,
})

// Parse matches raw case-insensitively against the supported formats.
// An empty string yields Default.
func Parse(raw string) (Format, error) {
	if strings.TrimSpace(raw) == "" {
		return Default, nil
	}
	f, ok := normalizer.Lookup(raw)
	if !ok {
		return "", fmt.Errorf("%w %q (valid: %s)", ErrUnsupported, raw, strings.Join(Names(), ", "))
	}
	return f, nil
}

// All returns every supported format in display order.
func All() []Format {
	return []Format{PNG, SVG, EPS, PDF, XMI, XMIArgo, XMIStar, ATXT, UTXT}
}

// Names returns every accepted spelling, aliases included.
func Names() []string {
	return normalizer.ValidKeys()
}

// Valid reports whether f is one of the enumerated formats.
func (f Format) Valid() bool {
	_, ok := specs[f]
	return ok
}

// Flag is the engine command-line switch selecting this format.
func (f Format) Flag() string { return specs[f].flag }

// Suffix is the extension the engine appends to generated files.
func (f Format) Suffix() string { return specs[f].suffix }

// Description is a human readable label.
func (f Format) Description() string { return specs[f].description }

func (f Format) String() string { return string(f) }

// ArtifactName applies the engine naming rule: the input base name with its
// extension replaced by the format suffix ("a/b/x.puml" -> "x.svg").
func (f Format) ArtifactName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + f.Suffix()
}
