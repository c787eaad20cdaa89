package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hdx-stable-schema/internal/catalog"
	"github.com/hdx-stable-schema/internal/render"
	"github.com/hdx-stable-schema/internal/schema"
	"github.com/hdx-stable-schema/pkg/hdx/models"
)

var resourceFields = []string{"format", "filename", "kind", "in_quarantine", "sheets", "schemas", "bounding_box", "checks"}

// loadDataset resolves source. A dataset missing from the catalogue is
// reported to the user and yields a nil dataset without an error.
func (a *app) loadDataset(cmd *cobra.Command, source string) (*models.Dataset, error) {
	dataset, err := a.loader.Load(cmd.Context(), source)
	if errors.Is(err, catalog.ErrSourceNotFound) {
		a.log.Warn("Dataset not found", "source", source, "error", err)
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset '%s' not found on %s\n", source, a.cfg.HDX.Site)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}
	return dataset, nil
}

func resourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resources SOURCE",
		Short: "List a dataset's resources with their sheets and check history",
		Long: `List every resource of a dataset with its format, file name, sheets or
layer, and the dates of its file structure checks. Dates marked with * are
checks that changed the resource's structure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := a.loadDataset(cmd, args[0])
			if err != nil || dataset == nil {
				return err
			}
			p := a.printer(cmd)
			p.Banner("resources", datasetLabel(dataset))
			a.printResources(p, dataset, schema.NewDeriver(a.log).DeriveSchemas(dataset))
			return nil
		},
	}
}

// printResources lists each resource with the hashes of the schemas it
// contributes to.
func (a *app) printResources(p *render.Printer, dataset *models.Dataset, schemas *schema.Schemas) {
	p.Line("")
	p.Line("%d resources", len(dataset.Resources))
	for i := range dataset.Resources {
		res := &dataset.Resources[i]
		summary, err := schema.Summarize(res)
		if err != nil {
			a.log.Warn("Resource has no complete check", "resource", res.Name, "error", err)
		}

		p.Line("")
		p.Line("%d. %s%s", i+1, res.Name, resourceMarkers(summary))
		row := summaryRow(summary)
		row["schemas"] = schemaHashes(schemas.ForResource(res.Name))
		p.Dictionary(resourceFields, row)
		if len(summary.Checks) > 0 {
			p.Line("Check history:")
			p.List(checkStrings(summary.Checks))
		}
	}
}

func resourceMarkers(summary schema.ResourceSummary) string {
	var markers string
	if summary.InQuarantine {
		markers += color.New(color.FgRed).Sprint(" [quarantined]")
	}
	for _, entry := range summary.Checks {
		if entry.Changed() {
			markers += color.New(color.FgYellow).Sprint(" [changed]")
			break
		}
	}
	return markers
}

func summaryRow(summary schema.ResourceSummary) map[string]string {
	return map[string]string{
		"format":        summary.Format,
		"filename":      summary.Filename,
		"kind":          summary.Kind.String(),
		"in_quarantine": fmt.Sprint(summary.InQuarantine),
		"sheets":        strings.Join(summary.Sheets, "; "),
		"bounding_box":  summary.BoundingBox,
		"checks":        fmt.Sprint(len(summary.Checks)),
	}
}

func schemaHashes(schemas []*schema.Schema) string {
	hashes := make([]string, len(schemas))
	for i, s := range schemas {
		hashes[i] = s.HeaderHash
	}
	return strings.Join(hashes, "; ")
}

func checkStrings(entries []schema.ChangeEntry) []string {
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.String()
	}
	return out
}

func datasetLabel(dataset *models.Dataset) string {
	if dataset.Title != "" && dataset.Title != dataset.Name {
		return fmt.Sprintf("%s (%s)", dataset.Name, dataset.Title)
	}
	return dataset.Name
}
