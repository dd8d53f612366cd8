package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/doctrace/review-engine/pkg/models"
)

// exportHeader matches the column order the review UI expects.
var exportHeader = []string{
	"Attribute ID",
	"Name",
	"Category",
	"Section",
	"Page",
	"Confidence",
	"Extracted Value",
	"Corrected Value",
}

// WriteAttributesCSV renders attribute rows as CSV with a fixed header.
func WriteAttributesCSV(w io.Writer, attrs []*models.AttributeRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, a := range attrs {
		record := []string{
			a.AttributeKey,
			deref(a.Name),
			deref(a.Category),
			deref(a.Section),
			intString(a.Page),
			floatString(a.ConfidenceScore),
			a.ExtractedValue,
			deref(a.CorrectedValue),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intString(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func floatString(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}
