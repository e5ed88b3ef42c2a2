package domain

import (
	"time"

	"github.com/google/uuid"
)

// MetadataQuarterColumn and MetadataLoadTimestampColumn are appended to every
// bronze table so each row carries its partition key and load instant.
const (
	MetadataQuarterColumn       = "data_quarter"
	MetadataLoadTimestampColumn = "load_timestamp"
)

// RawRecordSet is the untyped, in-memory form of one source file. Every field
// is text; the empty string means the source had no value. The record set is
// created per file per load invocation and discarded once loaded.
type RawRecordSet struct {
	FileType      FileType
	Quarter       string
	LoadID        uuid.UUID
	LoadTimestamp time.Time
	Columns       []string
	Rows          [][]string
}

// Value returns the text of the named column in a row and whether the source
// carried a value there at all.
func (rs RawRecordSet) Value(row []string, column string) (string, bool) {
	for i, name := range rs.Columns {
		if name != column {
			continue
		}
		if i >= len(row) || row[i] == "" {
			return "", false
		}
		return row[i], true
	}
	return "", false
}

// NullCount counts rows where the named column is absent or empty.
func (rs RawRecordSet) NullCount(column string) int {
	idx := -1
	for i, name := range rs.Columns {
		if name == column {
			idx = i
			break
		}
	}
	count := 0
	for _, row := range rs.Rows {
		if idx < 0 || idx >= len(row) || row[idx] == "" {
			count++
		}
	}
	return count
}
