package domain

import (
	"fmt"
	"strings"
)

// FileType identifies one of the four quarterly extract files.
type FileType string

const (
	FileTypeSub FileType = "sub"
	FileTypeNum FileType = "num"
	FileTypeTag FileType = "tag"
	FileTypePre FileType = "pre"
)

// LoadOrder is the fixed order in which file types are loaded for a quarter.
var LoadOrder = []FileType{FileTypeSub, FileTypeNum, FileTypeTag, FileTypePre}

// ParseFileType converts a configuration string into a FileType.
func ParseFileType(value string) (FileType, error) {
	switch FileType(strings.ToLower(strings.TrimSpace(value))) {
	case FileTypeSub:
		return FileTypeSub, nil
	case FileTypeNum:
		return FileTypeNum, nil
	case FileTypeTag:
		return FileTypeTag, nil
	case FileTypePre:
		return FileTypePre, nil
	default:
		return "", fmt.Errorf("unknown file type %q", value)
	}
}

// ColumnType is the semantic type of a destination column.
type ColumnType string

const (
	ColumnTypeText      ColumnType = "TEXT"
	ColumnTypeInteger   ColumnType = "INTEGER"
	ColumnTypeDouble    ColumnType = "DOUBLE"
	ColumnTypeBoolean   ColumnType = "BOOLEAN"
	ColumnTypeDate      ColumnType = "DATE"
	ColumnTypeTimestamp ColumnType = "TIMESTAMP"
)

// Encoding names the text encoding a source file is written in. Submission
// files arrive as UTF-8 while the remaining extracts use Latin-1, so the
// encoding is declared per file type rather than assumed.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

// ColumnSpec describes one destination column.
type ColumnSpec struct {
	Name     string
	Type     ColumnType
	MaxLen   int // only meaningful for ColumnTypeText; 0 means unbounded
	Nullable bool
}

// SourceFileSpec is the immutable contract for one source file type: where
// its rows land, how the raw text is decoded, and which quality checks run
// after every load.
type SourceFileSpec struct {
	FileType  FileType
	FileName  string
	Table     string
	Delimiter rune
	Encoding  Encoding
	Columns   []ColumnSpec
	Checks    []QualityCheck
}

// Column returns the spec for a named column.
func (s SourceFileSpec) Column(name string) (ColumnSpec, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnSpec{}, false
}
