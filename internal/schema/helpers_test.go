package schema

import (
	"github.com/hdx-stable-schema/pkg/hdx/models"
)

func completeFS(timestamp string, sheets ...models.Sheet) models.FSCheck {
	return models.FSCheck{
		Timestamp: models.ParseCustomTime(timestamp),
		Message:   models.FSCheckCompleted,
		Sheets:    sheets,
	}
}

func failedFS(timestamp string) models.FSCheck {
	return models.FSCheck{
		Timestamp: models.ParseCustomTime(timestamp),
		Message:   "Error: could not read file",
	}
}

func sheet(name string, headers ...string) models.Sheet {
	return models.Sheet{
		Name:       name,
		Headers:    headers,
		HXLHeaders: make([]string, len(headers)),
		NCols:      len(headers),
		NRows:      100,
	}
}

func tabular(name string, checks ...models.FSCheck) models.Resource {
	return models.Resource{
		Name:        name,
		Format:      "CSV",
		DownloadURL: "https://data.humdata.org/dataset/x/resource/y/download/" + name + ".csv",
		Kind:        models.KindTabular,
		FSChecks:    checks,
	}
}

func shapeCheck(timestamp, message, bbox string, fields ...models.LayerField) models.ShapeCheck {
	return models.ShapeCheck{
		Timestamp:   models.ParseCustomTime(timestamp),
		Message:     message,
		BoundingBox: bbox,
		LayerFields: fields,
	}
}

func geospatial(name string, checks ...models.ShapeCheck) models.Resource {
	return models.Resource{
		Name:        name,
		Format:      "SHP",
		DownloadURL: "https://data.humdata.org/dataset/x/resource/z/download/" + name + ".zip",
		Kind:        models.KindGeospatial,
		ShapeChecks: checks,
	}
}
