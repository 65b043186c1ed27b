package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/umlbuilder/internal/fileset"
)

func TestWriteReport(t *testing.T) {
	src := t.TempDir()
	writeSources(t, src, "bad.puml", "good.puml")

	res, err := NewBuilder(&fakeEngine{}).Build(context.Background(), newRequest(t, RequestOptions{
		Input:     fileset.FileSet{Dir: src},
		Placement: fileset.Placement{Mode: fileset.CoLocate},
		Format:    "pdf",
	}))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "build.json")
	require.NoError(t, WriteReport(path, res, res.Err()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rep Report
	require.NoError(t, json.Unmarshal(data, &rep))

	assert.Equal(t, res.BuildID, rep.BuildID)
	assert.Equal(t, StatusPartial, rep.Status)
	assert.Equal(t, "pdf", rep.Format)
	assert.Equal(t, 1, rep.Rendered)
	assert.Equal(t, 1, rep.Failed)
	require.Len(t, rep.Files, 2)
	assert.Equal(t, "bad.puml", rep.Files[0].Input)
	assert.Contains(t, rep.Files[0].Error, "syntax error")
	assert.Empty(t, rep.Files[1].Error)
	require.Len(t, rep.Files[1].Artifacts, 1)
	assert.Equal(t, filepath.Join(src, "good.pdf"), rep.Files[1].Artifacts[0].Path)
	assert.NotEmpty(t, rep.Error)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestNewReportListsFreshInputs(t *testing.T) {
	res := &Result{
		BuildID: "b-1",
		Status:  StatusSuccess,
		Skipped: []fileset.ResolvedFile{{Rel: "a.puml"}, {Rel: "sub/b.puml"}},
	}
	rep := NewReport(res, nil)
	assert.Equal(t, []string{"a.puml", "sub/b.puml"}, rep.Fresh)
	assert.Equal(t, 2, rep.Skipped)
	assert.Empty(t, rep.Files)
	assert.Empty(t, rep.Error)
}
