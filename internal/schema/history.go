package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hdx-stable-schema/pkg/hdx/models"
)

// checkRecord is satisfied by both check variants.
type checkRecord interface {
	models.FSCheck | models.ShapeCheck
	Complete() bool
}

// ChangeEntry is one successful check in a resource's history.
type ChangeEntry struct {
	Date       string
	Annotation string
}

// Changed reports whether the entry carries a change annotation
func (e ChangeEntry) Changed() bool {
	return e.Annotation != ""
}

func (e ChangeEntry) String() string {
	if e.Annotation == "" {
		return e.Date
	}
	return fmt.Sprintf("%s* %s", e.Date, e.Annotation)
}

// latestComplete scans from newest to oldest. The bool is false when no
// check in the history is complete.
func latestComplete[T checkRecord](checks []T) (T, bool) {
	for i := len(checks) - 1; i >= 0; i-- {
		if checks[i].Complete() {
			return checks[i], true
		}
	}
	var zero T
	return zero, false
}

func lastMessage(res *models.Resource) string {
	switch res.Kind {
	case models.KindTabular:
		if n := len(res.FSChecks); n > 0 {
			return res.FSChecks[n-1].Message
		}
	case models.KindGeospatial:
		if n := len(res.ShapeChecks); n > 0 {
			return res.ShapeChecks[n-1].Message
		}
	}
	return ""
}

// LatestFSCheck returns the most recent completed file structure check.
func LatestFSCheck(res *models.Resource) (models.FSCheck, error) {
	if check, ok := latestComplete(res.FSChecks); ok {
		return check, nil
	}
	return models.FSCheck{}, &NoCompleteCheckError{Resource: res.Name, LastMessage: lastMessage(res)}
}

// LatestShapeCheck returns the most recent successful shape import.
func LatestShapeCheck(res *models.Resource) (models.ShapeCheck, error) {
	if check, ok := latestComplete(res.ShapeChecks); ok {
		return check, nil
	}
	return models.ShapeCheck{}, &NoCompleteCheckError{Resource: res.Name, LastMessage: lastMessage(res)}
}

// ChangeHistory lists every successful check of res in original order,
// annotated where something changed relative to the previous one.
func ChangeHistory(res *models.Resource) []ChangeEntry {
	switch res.Kind {
	case models.KindTabular:
		return tabularHistory(res.FSChecks)
	case models.KindGeospatial:
		return shapeHistory(res.ShapeChecks)
	case models.KindNone:
		return nil
	}
	return nil
}

func tabularHistory(checks []models.FSCheck) []ChangeEntry {
	var entries []ChangeEntry
	for _, check := range checks {
		if !check.Complete() {
			continue
		}
		entry := ChangeEntry{Date: check.Timestamp.Date()}
		if n := len(check.SheetChanges); n > 0 {
			entry.Annotation = fmt.Sprintf("%d %s", n, firstChangedField(check.SheetChanges))
		}
		entries = append(entries, entry)
	}
	return entries
}

func firstChangedField(changes []models.SheetChange) string {
	for _, change := range changes {
		if len(change.ChangedFields) > 0 {
			return change.ChangedFields[0].Field
		}
	}
	return "unknown"
}

func shapeHistory(checks []models.ShapeCheck) []ChangeEntry {
	var entries []ChangeEntry
	var previous *models.ShapeCheck
	for i := range checks {
		check := checks[i]
		if !check.Complete() {
			continue
		}
		entry := ChangeEntry{Date: check.Timestamp.Date()}
		if previous != nil {
			var notes []string
			if !sameFieldSet(previous.FieldNames(), check.FieldNames()) {
				notes = append(notes, "fields changed")
			}
			if previous.BoundingBox != check.BoundingBox {
				notes = append(notes, "bounding box changed")
			}
			entry.Annotation = strings.Join(notes, "; ")
		}
		entries = append(entries, entry)
		previous = &checks[i]
	}
	return entries
}

func sameFieldSet(a, b []string) bool {
	return slices.Equal(uniqueSorted(a), uniqueSorted(b))
}

func uniqueSorted(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
