// Package dataio reads capture tables and writes analysis results.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-bhloop/measure/bhloop"
)

// ReadRecord parses a headerless two-column table: response, reference.
// Fields are comma separated; lines starting with '#' are skipped. A row
// with fewer than two fields or a non-numeric field yields
// bhloop.ErrMalformedInput naming its line in the file.
func ReadRecord(r io.Reader) (*bhloop.Record, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	columns := make([][]float64, 2)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", bhloop.ErrMalformedInput, err)
		}
		line, _ := cr.FieldPos(0)
		if len(row) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d columns, need 2", bhloop.ErrMalformedInput, line, len(row))
		}

		resp, err := parseField(row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d column 1: %w", bhloop.ErrMalformedInput, line, err)
		}
		ref, err := parseField(row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d column 2: %w", bhloop.ErrMalformedInput, line, err)
		}

		columns[0] = append(columns[0], resp)
		columns[1] = append(columns[1], ref)
	}

	return bhloop.NewRecordFromColumns(columns)
}

// ReadRecordFile opens path and reads it with ReadRecord.
func ReadRecordFile(path string) (*bhloop.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record %s: %w", path, err)
	}
	defer f.Close()

	rec, err := ReadRecord(f)
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", path, err)
	}
	return rec, nil
}

// WriteRecord writes a record in the format ReadRecord accepts.
func WriteRecord(w io.Writer, rec *bhloop.Record) error {
	cw := csv.NewWriter(w)
	resp, ref := rec.Response(), rec.Reference()
	for i := range ref {
		if err := cw.Write([]string{formatFloat(resp[i]), formatFloat(ref[i])}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// formatFloat is the shortest representation that parses back to v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
