package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Snapshot computes a stable hash of the fields that affect build output.
// Watch mode compares snapshots to decide whether a reloaded configuration
// needs a full rebuild. Pattern lists are order-insensitive.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := xxhash.New()
	w := func(parts ...string) {
		_, _ = h.WriteString(strings.Join(parts, "="))
		_, _ = h.Write([]byte{0})
	}
	sorted := func(in []string) string {
		out := append([]string(nil), in...)
		sort.Strings(out)
		return strings.Join(out, ",")
	}
	w("source.directory", c.Source.Directory)
	w("source.base", c.Source.Base)
	w("source.includes", sorted(c.Source.Includes))
	w("source.excludes", sorted(c.Source.Excludes))
	w("output.directory", c.Output.Directory)
	w("output.flatten", strconv.FormatBool(c.Output.Flatten))
	w("output.in_source_directory", strconv.FormatBool(c.Output.InSourceDirectory))
	w("render.format", strings.ToLower(c.Render.Format))
	w("render.charset", c.Render.Charset)
	w("render.config_file", c.Render.ConfigFile)
	w("render.graphviz_dot", c.Render.GraphvizDot)
	w("render.metadata", strconv.FormatBool(c.Render.MetadataEnabled()))
	w("engine.command", c.Engine.Command)
	w("engine.jar", c.Engine.Jar)
	return fmt.Sprintf("%016x", h.Sum64())
}
