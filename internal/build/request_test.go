package build

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/umlbuilder/internal/fileset"
	"git.home.luguber.info/inful/umlbuilder/internal/format"
	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
)

func TestNewRequestDefaults(t *testing.T) {
	base := t.TempDir()
	req, err := NewRequest(RequestOptions{
		Input:     fileset.FileSet{Dir: base},
		Placement: fileset.Placement{OutputDir: filepath.Join(base, "out")},
	})
	require.NoError(t, err)

	assert.Equal(t, format.PNG, req.Format())
	assert.Equal(t, fileset.Mirror, req.Placement().Mode)
	assert.Equal(t, 1, req.Workers())
	assert.False(t, req.Overwrite())
	opts := req.RenderOptions()
	assert.True(t, opts.Metadata)
	assert.Empty(t, opts.Charset)
}

func TestNewRequestUnsupportedFormatBeforeFilesystem(t *testing.T) {
	_, err := NewRequest(RequestOptions{
		Input:     fileset.FileSet{Dir: filepath.Join(t.TempDir(), "does-not-exist")},
		Placement: fileset.Placement{Mode: fileset.Mirror, OutputDir: "out"},
		Format:    "jpeg",
	})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	assert.True(t, stderrors.Is(err, format.ErrUnsupported))

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	got, _ := ce.Context().GetString("format")
	assert.Equal(t, "jpeg", got)
}

func TestNewRequestValidation(t *testing.T) {
	base := t.TempDir()
	tests := []struct {
		name     string
		opts     RequestOptions
		category errors.ErrorCategory
	}{
		{
			name:     "missing output directory",
			opts:     RequestOptions{Input: fileset.FileSet{Dir: base}, Placement: fileset.Placement{Mode: fileset.Mirror}},
			category: errors.CategoryConfig,
		},
		{
			name:     "flatten needs output directory",
			opts:     RequestOptions{Input: fileset.FileSet{Dir: base}, Placement: fileset.Placement{Mode: fileset.Flatten, OutputDir: "  "}},
			category: errors.CategoryConfig,
		},
		{
			name:     "missing base",
			opts:     RequestOptions{Input: fileset.FileSet{Dir: filepath.Join(base, "nope")}, Placement: fileset.Placement{Mode: fileset.CoLocate}},
			category: errors.CategoryConfig,
		},
		{
			name:     "no input",
			opts:     RequestOptions{Placement: fileset.Placement{Mode: fileset.CoLocate}},
			category: errors.CategoryConfig,
		},
		{
			name:     "unknown mode",
			opts:     RequestOptions{Input: fileset.FileSet{Dir: base}, Placement: fileset.Placement{Mode: "scatter", OutputDir: "out"}},
			category: errors.CategoryConfig,
		},
		{
			name:     "negative concurrency",
			opts:     RequestOptions{Input: fileset.FileSet{Dir: base}, Placement: fileset.Placement{Mode: fileset.CoLocate}, Concurrency: -1},
			category: errors.CategoryValidation,
		},
		{
			name:     "bad pattern",
			opts:     RequestOptions{Input: fileset.FileSet{Dir: base, Includes: []string{"[x"}}, Placement: fileset.Placement{Mode: fileset.CoLocate}},
			category: errors.CategoryValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.opts)
			require.Error(t, err)
			assert.Nil(t, req)
			assert.Equal(t, tt.category, errors.GetCategory(err))
		})
	}
}

func TestNewRequestCoLocateNeedsNoOutput(t *testing.T) {
	req, err := NewRequest(RequestOptions{
		Input:     fileset.FileSet{Dir: t.TempDir()},
		Placement: fileset.Placement{Mode: fileset.CoLocate},
	})
	require.NoError(t, err)
	assert.Equal(t, fileset.CoLocate, req.Placement().Mode)
}

func TestNewRequestCharset(t *testing.T) {
	base := t.TempDir()
	req, err := NewRequest(RequestOptions{
		Input:     fileset.SingleDirectory{Path: base},
		Placement: fileset.Placement{Mode: fileset.CoLocate},
		Charset:   "utf-8",
	})
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", req.Charset())
	assert.Equal(t, "UTF-8", req.RenderOptions().Charset)

	req, err = NewRequest(RequestOptions{
		Input:     fileset.SingleDirectory{Path: base},
		Placement: fileset.Placement{Mode: fileset.CoLocate},
		Charset:   "latin1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, req.Charset())
}

func TestNewRequestPassesEngineOnlyCharsets(t *testing.T) {
	base := t.TempDir()
	tests := []struct {
		raw  string
		want string
	}{
		{"UTF8", "UTF8"},
		{"Cp1252", "Cp1252"},
		{" ISO8859_1 ", "ISO8859_1"},
		{"MacRoman", "MacRoman"},
		{"windows-1252", "windows-1252"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req, err := NewRequest(RequestOptions{
				Input:     fileset.SingleDirectory{Path: base},
				Placement: fileset.Placement{Mode: fileset.CoLocate},
				Charset:   tt.raw,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.RenderOptions().Charset)
		})
	}
}

func TestRequestIsImmutable(t *testing.T) {
	includes := []string{"**/*.puml"}
	req, err := NewRequest(RequestOptions{
		Input:     fileset.FileSet{Dir: t.TempDir(), Includes: includes},
		Placement: fileset.Placement{Mode: fileset.CoLocate},
	})
	require.NoError(t, err)

	includes[0] = "changed"
	fs := req.Input().(fileset.FileSet)
	assert.Equal(t, "**/*.puml", fs.Includes[0])

	fs.Includes[0] = "changed again"
	assert.Equal(t, "**/*.puml", req.Input().(fileset.FileSet).Includes[0])
}

func TestRequestWorkers(t *testing.T) {
	base := t.TempDir()
	mk := func(mode fileset.Mode, n int) *Request {
		req, err := NewRequest(RequestOptions{
			Input:       fileset.FileSet{Dir: base},
			Placement:   fileset.Placement{Mode: mode, OutputDir: filepath.Join(base, "out")},
			Concurrency: n,
		})
		require.NoError(t, err)
		return req
	}
	assert.Equal(t, 1, mk(fileset.Mirror, 0).Workers())
	assert.Equal(t, 4, mk(fileset.Mirror, 4).Workers())
	assert.Equal(t, 1, mk(fileset.Flatten, 4).Workers())
	assert.Equal(t, 3, mk(fileset.CoLocate, 3).Workers())
}

func TestRequestRenderOptions(t *testing.T) {
	req, err := NewRequest(RequestOptions{
		Input:        fileset.FileSet{Dir: t.TempDir()},
		Placement:    fileset.Placement{Mode: fileset.CoLocate},
		Format:       "TXT",
		ConfigFile:   "skin.cfg",
		GraphvizDot:  "/usr/bin/dot",
		KeepTmpFiles: true,
		Verbose:      true,
		NoMetadata:   true,
	})
	require.NoError(t, err)
	opts := req.RenderOptions()
	assert.Equal(t, format.ATXT, opts.Format)
	assert.Equal(t, "skin.cfg", opts.ConfigFile)
	assert.Equal(t, "/usr/bin/dot", opts.GraphvizDot)
	assert.True(t, opts.KeepTmpFiles)
	assert.True(t, opts.Verbose)
	assert.False(t, opts.Metadata)
}
