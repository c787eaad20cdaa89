package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hdx-stable-schema/internal/render"
	"github.com/hdx-stable-schema/internal/schema"
	"github.com/hdx-stable-schema/pkg/hdx/models"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

var dictionaryColumns = []string{"Column", "Type", "Label", "Description"}

type schemasOptions struct {
	output string
	infer  bool
	strict bool
}

func schemasCmd(a *app) *cobra.Command {
	var opts schemasOptions

	cmd := &cobra.Command{
		Use:   "schemas SOURCE",
		Short: "Show the schemas of a dataset and the resources sharing them",
		Long: `Derive a schema from the latest complete check of every resource and group
resources with identical headers. Tabular column types are not published
by HDX; with --infer they are inferred from a preview of the first resource
sharing each schema.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains([]string{outputTable, outputYAML, outputJSON}, opts.output) {
				return fmt.Errorf("unknown output format %q (want table, yaml or json)", opts.output)
			}
			dataset, err := a.loadDataset(cmd, args[0])
			if err != nil || dataset == nil {
				return err
			}

			schemas := schema.NewDeriver(a.log).DeriveSchemas(dataset)
			if opts.infer {
				a.inferSchemaTypes(cmd.Context(), dataset, schemas, opts.strict)
			}

			switch opts.output {
			case outputYAML:
				return writeYAML(cmd.OutOrStdout(), schemas.All())
			case outputJSON:
				return writeJSON(cmd.OutOrStdout(), schemas.All())
			}
			p := a.printer(cmd)
			p.Banner("schemas", datasetLabel(dataset))
			printSchemas(p, schemas)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "Output format: table, yaml or json")
	cmd.Flags().BoolVar(&opts.infer, "infer", false, "Infer missing column types from a data preview")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Report mixed-type columns as string")

	return cmd
}

// inferSchemaTypes previews the first resource of each schema that still
// has untyped columns. Failures leave the types blank.
func (a *app) inferSchemaTypes(ctx context.Context, dataset *models.Dataset, schemas *schema.Schemas, strict bool) {
	fetcher := a.fetcher(0)
	for _, s := range schemas.All() {
		if !slices.Contains(s.DataTypes, "") || len(s.SharedWith) == 0 {
			continue
		}
		res := dataset.Resource(s.SharedWith[0])
		if res == nil {
			continue
		}
		sheetName := s.SheetName
		if sheetName == schema.ShapefileSheet {
			sheetName = ""
		}

		table, err := fetcher.Fetch(ctx, res, sheetName)
		if err != nil {
			a.log.Warn("Could not preview resource for type inference",
				"resource", res.Name,
				"header_hash", s.HeaderHash,
				"error", err)
			continue
		}
		s.ApplyInferredTypes(columnTypes(table.Columns, table.Rows, strict))
	}
}

func printSchemas(p *render.Printer, schemas *schema.Schemas) {
	p.Line("")
	p.Line("%d distinct schemas", schemas.Len())
	for i, s := range schemas.All() {
		p.Line("")
		p.Line("Schema %d: %s (sheet: %s, %d columns)", i+1, s.HeaderHash, s.SheetName, len(s.Headers))
		p.Line("Shared with:")
		p.List(s.SharedWith)
		p.Table(dictionaryColumns, dictionaryRows(schema.DataDictionary(s)))
	}
}

func dictionaryRows(rows []schema.DictionaryRow) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		out[i] = map[string]string{
			"Column":      row.Column,
			"Type":        row.Type,
			"Label":       row.Label,
			"Description": row.Description,
		}
	}
	return out
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
