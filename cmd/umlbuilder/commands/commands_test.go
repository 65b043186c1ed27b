package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/umlbuilder/internal/build"
	"git.home.luguber.info/inful/umlbuilder/internal/config"
	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
)

const fakePlantUML = `#!/bin/sh
out=""
while [ $# -gt 1 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
input="$1"
name=$(basename "$input")
name="${name%.*}"
if grep -q broken "$input"; then
  echo "Syntax Error?" >&2
  exit 200
fi
echo "png" > "$out/$name.png"
`

type cliEnv struct {
	dir    string
	config string
	engine string
	src    string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell based fake engine")
	}
	dir := t.TempDir()
	engine := filepath.Join(dir, "plantuml")
	require.NoError(t, os.WriteFile(engine, []byte(fakePlantUML), 0o700))
	src := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(src, 0o750))
	return &cliEnv{
		dir:    dir,
		config: filepath.Join(dir, "missing.yaml"),
		engine: engine,
		src:    src,
	}
}

func (e *cliEnv) write(t *testing.T, rel, body string) {
	t.Helper()
	p := filepath.Join(e.src, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("umlbuilder"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cli, kctx := parse(t, args...)
	var out bytes.Buffer
	global := &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Out: &out}
	err := kctx.Run(global, cli)
	return out.String(), err
}

func exitCode(err error) int {
	return errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err)
}

func TestFormatsListsEveryFormat(t *testing.T) {
	out, err := run(t, "formats")
	require.NoError(t, err)
	for _, want := range []string{"png", "svg", "xmi:star", "-tutxt", "(default)"} {
		assert.Contains(t, out, want)
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "umlbuilder.yaml")

	out, err := run(t, "-c", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized successfully")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "svg", cfg.Render.Format)

	_, err = run(t, "-c", path, "init")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	_, err = run(t, "-c", path, "init", "--force")
	require.NoError(t, err)
}

func TestGenerateIncremental(t *testing.T) {
	env := newCLIEnv(t)
	env.write(t, "a.puml", "@startuml\nA -> B\n@enduml\n")
	env.write(t, "b.puml", "@startuml\nB -> C\n@enduml\n")
	outDir := filepath.Join(env.dir, "out")

	args := []string{"-c", env.config, "generate", "--source-dir", env.src, "-o", outDir, "--plantuml", env.engine}
	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 2, up to date 0, failed 0")
	assert.FileExists(t, filepath.Join(outDir, "a.png"))
	assert.FileExists(t, filepath.Join(outDir, "b.png"))

	out, err = run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 0, up to date 2, failed 0")

	out, err = run(t, append(args, "--overwrite")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 2")
}

func TestGenerateFileSetMirror(t *testing.T) {
	env := newCLIEnv(t)
	env.write(t, "a/x.puml", "@startuml\n@enduml\n")
	env.write(t, "drafts/y.puml", "@startuml\n@enduml\n")
	outDir := filepath.Join(env.dir, "out")

	_, err := run(t, "-c", env.config, "generate",
		"--base", env.src, "--include", "**/*.puml", "--exclude", "drafts/**",
		"-o", outDir, "--plantuml", env.engine)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "a", "x.png"))
	assert.NoFileExists(t, filepath.Join(outDir, "drafts", "y.png"))
}

func TestGenerateRenderFailure(t *testing.T) {
	env := newCLIEnv(t)
	env.write(t, "good.puml", "@startuml\n@enduml\n")
	env.write(t, "bad.puml", "@startuml\nbroken\n@enduml\n")
	outDir := filepath.Join(env.dir, "out")
	report := filepath.Join(env.dir, "report.json")
	args := []string{"-c", env.config, "generate", "--source-dir", env.src, "-o", outDir,
		"--plantuml", env.engine, "--report", report}

	out, err := run(t, args...)
	require.Error(t, err)
	assert.Equal(t, 11, exitCode(err))
	assert.Contains(t, out, "FAILED bad.puml")
	assert.FileExists(t, filepath.Join(outDir, "good.png"))

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var rep build.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, build.StatusPartial, rep.Status)
	assert.Equal(t, 1, rep.Failed)

	_, err = run(t, append(args, "--continue-on-error")...)
	require.NoError(t, err)
}

func TestGenerateWritesMetricsTextfile(t *testing.T) {
	env := newCLIEnv(t)
	env.write(t, "a.puml", "@startuml\n@enduml\n")
	textfile := filepath.Join(env.dir, "umlbuilder.prom")

	_, err := run(t, "-c", env.config, "generate", "--source-dir", env.src,
		"-o", filepath.Join(env.dir, "out"), "--plantuml", env.engine, "--metrics-textfile", textfile)
	require.NoError(t, err)
	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "umlbuilder_file_results_total")
}

func TestGenerateExitCodes(t *testing.T) {
	env := newCLIEnv(t)

	_, err := run(t, "-c", env.config, "generate")
	require.Error(t, err)
	assert.Equal(t, 4, exitCode(err), "missing config without sources")

	_, err = run(t, "-c", env.config, "generate", "--source-dir", env.src, "--format", "gif")
	require.Error(t, err)
	assert.Equal(t, 7, exitCode(err), "unsupported format")

	_, err = run(t, "-c", env.config, "generate", "--source-dir", env.src, "--flatten", "--in-source")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err), "conflicting placement")

	_, err = run(t, "-c", env.config, "generate", "--source-dir", filepath.Join(env.dir, "nope"))
	require.Error(t, err)
	assert.Equal(t, 7, exitCode(err), "missing source directory")
}

func TestGenerateUsesConfigFile(t *testing.T) {
	env := newCLIEnv(t)
	env.write(t, "a.puml", "@startuml\n@enduml\n")
	env.config = filepath.Join(env.dir, "umlbuilder.yaml")
	outDir := filepath.Join(env.dir, "configured")
	yml := "source:\n  base: " + env.src + "\noutput:\n  directory: " + outDir + "\nengine:\n  command: " + env.engine + "\n"
	require.NoError(t, os.WriteFile(env.config, []byte(yml), 0o600))

	_, err := run(t, "-c", env.config, "generate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "a.png"))
}

func TestBuildFlagsApply(t *testing.T) {
	cfg, err := config.Parse([]byte(`
source:
  base: docs
  includes: ["**/*.pu"]
render:
  format: svg
build:
  concurrency: 4
`))
	require.NoError(t, err)

	flags := BuildFlags{
		Include:         []string{" **/*.puml "},
		Format:          "pdf",
		Metadata:        ptr(false),
		ContinueOnError: ptr(true),
		Jar:             "/opt/plantuml.jar",
	}
	flags.apply(cfg)

	assert.Equal(t, "docs", cfg.Source.Base)
	assert.Equal(t, []string{"**/*.puml"}, cfg.Source.Includes)
	assert.Equal(t, "pdf", cfg.Render.Format)
	assert.False(t, cfg.Render.MetadataEnabled())
	assert.False(t, cfg.Build.FailOnErrorEnabled())
	assert.Equal(t, 4, cfg.Build.Concurrency)
	assert.Equal(t, "/opt/plantuml.jar", cfg.Engine.Jar)
	assert.Equal(t, "java", cfg.Engine.Java)
}

func ptr[T any](v T) *T { return &v }

func TestBuildFlagsSwitchConfiguredBooleansOff(t *testing.T) {
	cfg, err := config.Parse([]byte(`
source:
  base: docs
output:
  flatten: true
render:
  keep_tmp_files: true
build:
  overwrite: true
  fail_on_error: false
`))
	require.NoError(t, err)

	cli, _ := parse(t, "generate", "--no-overwrite", "--no-flatten", "--no-keep-tmp-files", "--no-continue-on-error", "--no-metadata")
	cli.Generate.apply(cfg)

	assert.False(t, cfg.Build.Overwrite)
	assert.False(t, cfg.Output.Flatten)
	assert.False(t, cfg.Render.KeepTmpFiles)
	assert.True(t, cfg.Build.FailOnErrorEnabled())
	assert.False(t, cfg.Render.MetadataEnabled())
}

func TestBuildFlagsAbsentBooleansKeepConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("source:\n  base: docs\nbuild:\n  overwrite: true\n"))
	require.NoError(t, err)

	cli, _ := parse(t, "generate")
	cli.Generate.apply(cfg)

	assert.True(t, cfg.Build.Overwrite)
	assert.True(t, cfg.Render.MetadataEnabled())
}

func TestBuildFlagsPlacementOverridesConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("source:\n  base: docs\noutput:\n  in_source_directory: true\n"))
	require.NoError(t, err)

	cli, _ := parse(t, "generate", "--flatten", "-o", "out")
	cli.Generate.apply(cfg)
	assert.True(t, cfg.Output.Flatten)
	assert.False(t, cfg.Output.InSourceDirectory)
	require.NoError(t, cfg.Validate())

	cfg, err = config.Parse([]byte("source:\n  base: docs\noutput:\n  flatten: true\n"))
	require.NoError(t, err)
	cli, _ = parse(t, "generate", "--in-source")
	cli.Generate.apply(cfg)
	assert.True(t, cfg.Output.InSourceDirectory)
	assert.False(t, cfg.Output.Flatten)
	require.NoError(t, cfg.Validate())
}

func TestBuildFlagsSourceDirReplacesFileSet(t *testing.T) {
	cfg, err := config.Parse([]byte("source:\n  base: docs\n"))
	require.NoError(t, err)

	flags := BuildFlags{SourceDir: "diagrams"}
	flags.apply(cfg)

	assert.Equal(t, "diagrams", cfg.Source.Directory)
	assert.Empty(t, cfg.Source.Base)
	assert.Empty(t, cfg.Source.Includes)
	require.NoError(t, cfg.Validate())
}

func TestFlagsBindEnvironment(t *testing.T) {
	t.Setenv("UMLBUILDER_FORMAT", "svg")
	t.Setenv("UMLBUILDER_CONCURRENCY", "3")

	cli, _ := parse(t, "generate")
	assert.Equal(t, "svg", cli.Generate.Format)
	assert.Equal(t, 3, cli.Generate.Concurrency)
}

func TestWatchLoadAppliesDurations(t *testing.T) {
	env := newCLIEnv(t)
	cli, _ := parse(t, "-c", env.config, "watch", "--source-dir", env.src, "--debounce", "50ms", "--poll-interval", "1m")

	cfg, err := cli.Watch.load(cli)
	require.NoError(t, err)
	assert.Equal(t, "50ms", cfg.Watch.Debounce.String())
	assert.Equal(t, "1m0s", cfg.Watch.PollInterval.String())
}
