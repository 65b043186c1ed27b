package commands

import (
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/umlbuilder/internal/format"
)

// FormatsCmd implements the 'formats' command.
type FormatsCmd struct{}

func (f *FormatsCmd) Run(global *Global) error {
	tw := tabwriter.NewWriter(global.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FORMAT\tFLAG\tSUFFIX\tDESCRIPTION")
	for _, fm := range format.All() {
		marker := ""
		if fm == format.Default {
			marker = " (default)"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s%s\n", fm, fm.Flag(), fm.Suffix(), fm.Description(), marker)
	}
	return tw.Flush()
}
