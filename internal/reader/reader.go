// Package reader parses a quarterly extract file into an untyped, in-memory
// record set. No type inference happens here; every field stays text until
// the loader coerces it.
package reader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/secfsds/bronze/internal/domain"
)

var (
	// ErrFileNotFound is returned when a quarter directory is missing the
	// expected source file.
	ErrFileNotFound = errors.New("source file not found")

	// ErrMalformedInput is returned when the header row is unreadable or the
	// file cannot be decoded under the declared encoding.
	ErrMalformedInput = errors.New("malformed source file")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// Read parses the file at path according to spec and tags every row with the
// quarter and a single load timestamp for the whole set.
func Read(path string, spec domain.SourceFileSpec, quarter string, loadTimestamp time.Time) (domain.RawRecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.RawRecordSet{}, fmt.Errorf("%w: %s for quarter %s", ErrFileNotFound, path, quarter)
		}
		return domain.RawRecordSet{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	decoded, err := decode(f, spec.Encoding)
	if err != nil {
		return domain.RawRecordSet{}, err
	}

	reader := bufio.NewReader(decoded)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = spec.Delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	header, err := csvReader.Read()
	if err != nil {
		return domain.RawRecordSet{}, fmt.Errorf("%w: unreadable header in %s: %v", ErrMalformedInput, path, err)
	}
	if len(header) == 0 || !validText(header) {
		return domain.RawRecordSet{}, fmt.Errorf("%w: header in %s is not decodable as %s", ErrMalformedInput, path, spec.Encoding)
	}

	var rows [][]string
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.RawRecordSet{}, fmt.Errorf("%w: failed to read %s: %v", ErrMalformedInput, path, err)
		}
		if !validText(record) {
			return domain.RawRecordSet{}, fmt.Errorf("%w: row in %s is not decodable as %s", ErrMalformedInput, path, spec.Encoding)
		}
		rows = append(rows, padRow(record, len(header)))
	}

	return domain.RawRecordSet{
		FileType:      spec.FileType,
		Quarter:       quarter,
		LoadID:        uuid.New(),
		LoadTimestamp: loadTimestamp,
		Columns:       header,
		Rows:          rows,
	}, nil
}

func decode(r io.Reader, enc domain.Encoding) (io.Reader, error) {
	switch enc {
	case domain.EncodingUTF8, "":
		return r, nil
	case domain.EncodingLatin1:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported text encoding %q", enc)
	}
}

func validText(fields []string) bool {
	for _, field := range fields {
		if !utf8.ValidString(field) {
			return false
		}
	}
	return true
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}
