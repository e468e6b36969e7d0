// internal/domain/models/record.go
package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// YearColumn binds a fixed remote field to its table header.
type YearColumn struct {
	Field string // JSON field name as sent by the remote service
	Label string // column header
}

// YearColumns are the year fields every disease table shows, in display order.
// The remote service sanitizes spreadsheet headers into these field names.
var YearColumns = []YearColumn{
	{Field: "_2021", Label: "2021"},
	{Field: "_2022", Label: "2022"},
	{Field: "_2023", Label: "2023"},
	{Field: "_2024", Label: "2024"},
	{Field: "_2025__prov__", Label: "2025 (Prov.)"},
}

// Field names of the non-year columns.
const (
	fieldID       = "_id"
	fieldSerialNo = "s__no"
	fieldRegion   = "state_u_t_"
)

// YearCount is one cell of a record's yearly series.
type YearCount struct {
	Label string
	Value string // blank when the field was missing or not a scalar
}

// DiseaseRecord is one region's yearly case counts for a disease.
// Records are immutable once decoded.
type DiseaseRecord struct {
	ID         string
	SerialNo   string
	RegionName string
	YearCounts []YearCount // same order as YearColumns
}

// UnmarshalJSON decodes a record without validating its shape.
// Strings and numbers are kept verbatim; anything else becomes blank.
func (rec *DiseaseRecord) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := DiseaseRecord{
		ID:         scalar(raw[fieldID]),
		SerialNo:   scalar(raw[fieldSerialNo]),
		RegionName: scalar(raw[fieldRegion]),
		YearCounts: make([]YearCount, 0, len(YearColumns)),
	}
	for _, col := range YearColumns {
		out.YearCounts = append(out.YearCounts, YearCount{
			Label: col.Label,
			Value: scalar(raw[col.Field]),
		})
	}

	*rec = out
	return nil
}

// scalar renders a raw JSON value as display text.
func scalar(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return ""
		}
		return n.String()
	default:
		// null, booleans, objects, arrays
		return ""
	}
}
