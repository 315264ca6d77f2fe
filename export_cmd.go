package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgnsrekt/letterboard/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export [PATH]",
	Short:   "Download the board's source bundle",
	Long:    paragraph(fmt.Sprintf("\n%s a zip with a README, an HTML page, the letter catalogs and the config file. PATH may be a directory or a file name.", keyword("Export"))),
	Example: paragraph("letterboard export\nletterboard export ~/Downloads"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := export.FileName
		if len(args) == 1 {
			path = exportPath(expandPath(args[0]))
		}

		b, err := export.DefaultBundle(bundleConfig())
		if err != nil {
			return err
		}
		if err := export.Write(cmd.Context(), path, b); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		return nil
	},
}

// exportPath puts the bundle inside p when p is a directory.
func exportPath(p string) string {
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return filepath.Join(p, export.FileName)
	}
	return p
}
