package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Format
	}{
		{"", PNG},
		{"svg", SVG},
		{"SVG", SVG},
		{" Eps ", EPS},
		{"xmi", XMI},
		{"XMI:ARGO", XMIArgo},
		{"xmi:star", XMIStar},
		{"xmi:start", XMIStar},
		{"txt", ATXT},
		{"atxt", ATXT},
		{"utxt", UTXT},
		{"pdf", PDF},
		{"png", PNG},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnsupported(t *testing.T) {
	for _, raw := range []string{"jpeg", "gif", "svgz", "xmi:"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupported))
		})
	}
}

func TestEveryFormatHasEngineMapping(t *testing.T) {
	for _, f := range All() {
		assert.True(t, f.Valid(), "%s should be valid", f)
		assert.NotEmpty(t, f.Flag(), "%s flag", f)
		assert.Regexp(t, `^\.[a-z]+$`, f.Suffix(), "%s suffix", f)
		assert.NotEmpty(t, f.Description(), "%s description", f)
	}
	assert.False(t, Format("jpeg").Valid())
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "x.svg", SVG.ArtifactName("/a/b/x.puml"))
	assert.Equal(t, "seq.atxt", ATXT.ArtifactName("seq.txt"))
	assert.Equal(t, "model.xmi", XMIArgo.ArtifactName("model.pu"))
	assert.Equal(t, "noext.png", PNG.ArtifactName("dir/noext"))
	assert.Equal(t, "archive.tar.pdf", PDF.ArtifactName("archive.tar.gz"))
}

func TestNamesIncludesAliases(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "xmi:start")
	assert.Contains(t, names, "atxt")
	assert.Len(t, names, 11)
}
