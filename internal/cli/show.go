package cli

import (
	"github.com/spf13/cobra"

	"github.com/hdx-stable-schema/internal/schema"
)

func showCmd(a *app) *cobra.Command {
	var infer bool

	cmd := &cobra.Command{
		Use:   "show SOURCE",
		Short: "Show resources followed by schemas for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := a.loadDataset(cmd, args[0])
			if err != nil || dataset == nil {
				return err
			}

			p := a.printer(cmd)
			p.Banner("show", datasetLabel(dataset))
			schemas := schema.NewDeriver(a.log).DeriveSchemas(dataset)
			a.printResources(p, dataset, schemas)

			if infer {
				a.inferSchemaTypes(cmd.Context(), dataset, schemas, false)
			}
			printSchemas(p, schemas)
			return nil
		},
	}

	cmd.Flags().BoolVar(&infer, "infer", false, "Infer missing column types from a data preview")

	return cmd
}
