package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hdx-stable-schema/internal/preview"
	"github.com/hdx-stable-schema/internal/schema"
)

type previewOptions struct {
	resource string
	sheet    string
	rows     int
	strict   bool
}

func previewCmd(a *app) *cobra.Command {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview SOURCE",
		Short: "Show the first rows of a resource and their inferred column types",
		Long: `Download a resource and print its first rows followed by the type inferred
for each column. CSV, XLSX, GeoJSON and shapefiles (plain or zipped) are
supported. A workbook with several sheets where any sheet carries HXL
hashtags needs --sheet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := a.loadDataset(cmd, args[0])
			if err != nil || dataset == nil {
				return err
			}
			res := dataset.Resource(opts.resource)
			if res == nil {
				p := a.printer(cmd)
				p.Line("Resource '%s' not found in dataset %s. Resources are:", opts.resource, dataset.Name)
				names := make([]string, len(dataset.Resources))
				for i, r := range dataset.Resources {
					names[i] = r.Name
				}
				p.List(names)
				return fmt.Errorf("resource %q not found", opts.resource)
			}

			table, err := a.fetcher(opts.rows).Fetch(cmd.Context(), res, opts.sheet)
			if err != nil {
				status := preview.Status(res, err)
				fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgRed).Sprint(status))
				if errors.Is(err, preview.ErrAmbiguousSheet) {
					return err
				}
				a.log.Warn("Preview failed", "resource", res.Name, "error", err)
				return nil
			}

			p := a.printer(cmd)
			p.Banner("preview", datasetLabel(dataset), res.Name)
			p.Line("")
			p.Line("%s: %d rows x %d columns", preview.StatusSuccess, len(table.Rows), len(table.Columns))
			p.Table(table.Columns, rowMaps(table.Rows))

			types := columnTypes(table.Columns, table.Rows, opts.strict)
			typeRows := make([]map[string]string, len(table.Columns))
			for i, column := range table.Columns {
				typeRows[i] = map[string]string{"Column": column, "Type": string(types[column])}
			}
			p.Line("")
			p.Table([]string{"Column", "Type"}, typeRows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.resource, "resource", "r", "", "Resource name to preview (required)")
	cmd.Flags().StringVarP(&opts.sheet, "sheet", "s", "", "Sheet to read from a workbook")
	cmd.Flags().IntVarP(&opts.rows, "rows", "n", 0, "Number of rows to read; overrides PREVIEW_ROWS")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Report mixed-type columns as string")
	_ = cmd.MarkFlagRequired("resource")

	return cmd
}

// columnTypes infers a type per column. Cells missing from a row count as
// null.
func columnTypes(columns []string, rows []schema.Row, strict bool) map[string]schema.TypeTag {
	types := make(map[string]schema.TypeTag, len(columns))
	for _, column := range columns {
		values := make([]string, len(rows))
		for i, row := range rows {
			values[i] = row[column]
		}
		types[column] = schema.InferColumnType(values, schema.WithStrict(strict))
	}
	return types
}

func rowMaps(rows []schema.Row) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out
}
