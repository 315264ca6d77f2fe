package main

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:       "list [MODE]",
	Short:     "Print the letters of a board",
	Long:      paragraph(fmt.Sprintf("\n%s the symbols and pronunciations of one board, or of all of them.", keyword("Print"))),
	Example:   paragraph("letterboard list\nletterboard list native"),
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: modeNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		modes := glyph.Modes()
		if len(args) == 1 {
			m, err := glyph.ParseMode(args[0])
			if err != nil {
				return err
			}
			modes = []glyph.Mode{m}
		}

		sections := make([]string, 0, len(modes))
		for _, m := range modes {
			sections = append(sections, glyph.Markdown(m))
		}
		return renderMarkdown(cmd.OutOrStdout(), strings.Join(sections, "\n"))
	},
}

func modeNames() []string {
	names := make([]string, 0, len(glyph.Modes()))
	for _, m := range glyph.Modes() {
		names = append(names, m.String())
	}
	return names
}
