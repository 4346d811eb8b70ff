package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/qwentts/pkg/cli"
	"github.com/haivivi/qwentts/pkg/qwentts"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [modes|models|speakers|languages|schema]",
	Short: "List generation modes, model sizes, speakers and languages",
	Long: `List the choices generate accepts.

Without an argument the whole catalog is printed as YAML (or JSON with
--json). With a section name that section is printed as a table. The schema section
prints the JSON Schema of request files (generate -f).

Examples:
  qwentts catalog
  qwentts catalog speakers
  qwentts catalog schema > request.schema.json`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"modes", "models", "speakers", "languages", "schema"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := qwentts.DefaultCatalog()
		if len(args) == 0 {
			return outputResult(cat)
		}
		switch args[0] {
		case "modes":
			return outputTable(modeTable(cat.Modes))
		case "models":
			return outputTable(sizeTable(cat.Models))
		case "speakers":
			return outputTable(speakerTable(cat.Speakers))
		case "languages":
			return outputTable(languageTable(cat.Languages))
		case "schema":
			schema, err := qwentts.ParamsSchema()
			if err != nil {
				return err
			}
			return cli.Output(schema, cli.OutputOptions{Format: cli.FormatJSON, Query: outputQuery})
		}
		return cmd.Usage()
	},
}

type modeTable []qwentts.ModeInfo

func (modeTable) Header() []string { return []string{"ID", "NAME", "DESCRIPTION"} }

func (t modeTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, m := range t {
		rows[i] = []string{string(m.ID), m.Name, m.Description}
	}
	return rows
}

type sizeTable []qwentts.SizeInfo

func (sizeTable) Header() []string { return []string{"ID", "NAME", "DESCRIPTION"} }

func (t sizeTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, s := range t {
		rows[i] = []string{string(s.ID), s.Name, s.Description}
	}
	return rows
}

type speakerTable []qwentts.Speaker

func (speakerTable) Header() []string { return []string{"ID", "NAME", "LANGUAGE", "DESCRIPTION"} }

func (t speakerTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, s := range t {
		rows[i] = []string{s.ID, s.Name, s.Language, s.Description}
	}
	return rows
}

type languageTable []string

func (languageTable) Header() []string { return []string{"LANGUAGE"} }

func (t languageTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, l := range t {
		rows[i] = []string{l}
	}
	return rows
}
