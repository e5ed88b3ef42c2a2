package loader

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/secfsds/bronze/internal/domain"
)

// ErrCastUnsupported is returned when a column declares a semantic type with
// no cast rule. This is a configuration defect, never a data error.
var ErrCastUnsupported = errors.New("no cast rule for column type")

// sourceDateLayout is the 8-digit form every date field in the extracts uses.
// Dates must be parsed with this explicit layout: a generic multi-layout
// parse quietly fails on YYYYMMDD and turns every date into a null.
const sourceDateLayout = "20060102"

const (
	storedDateLayout      = "2006-01-02"
	storedTimestampLayout = "2006-01-02 15:04:05"
)

// timestampLayouts are only consulted for TIMESTAMP columns, where the source
// format is free-form.
var timestampLayouts = []string{
	storedTimestampLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05.000",
	"2006/01/02 15:04:05",
}

// castFunc converts source text into a typed value, returning nil instead of
// an error when the text cannot be parsed. The row is kept either way.
type castFunc func(raw string) any

func castForType(t domain.ColumnType) (castFunc, error) {
	switch t {
	case domain.ColumnTypeText:
		return castText, nil
	case domain.ColumnTypeInteger:
		return castInteger, nil
	case domain.ColumnTypeDouble:
		return castDouble, nil
	case domain.ColumnTypeBoolean:
		return castBoolean, nil
	case domain.ColumnTypeDate:
		return castDate, nil
	case domain.ColumnTypeTimestamp:
		return castTimestamp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrCastUnsupported, t)
	}
}

func castText(raw string) any {
	return raw
}

func castInteger(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	// Allow float representations that convert to int without loss.
	if f, err := strconv.ParseFloat(raw, 64); err == nil && math.Mod(f, 1) == 0 {
		return int64(f)
	}
	return nil
}

func castDouble(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return nil
}

func castBoolean(raw string) any {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y":
		return true
	case "0", "false", "f", "no", "n":
		return false
	default:
		return nil
	}
}

func castDate(raw string) any {
	ts, err := time.Parse(sourceDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return ts.Format(storedDateLayout)
}

func castTimestamp(raw string) any {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format(storedTimestampLayout)
		}
	}
	return nil
}
