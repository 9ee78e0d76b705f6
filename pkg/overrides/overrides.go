// Package overrides reads and writes manual headline overrides as CSV with a
// "slide,headline" header and 1-based slide numbers.
package overrides

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidOverride is returned for rows that cannot be parsed.
var ErrInvalidOverride = errors.New("invalid override")

var header = []string{"slide", "headline"}

// Parse reads overrides from r and returns them keyed by 0-based position.
// The header row is optional. A later row for the same slide wins. An empty
// headline is kept: it blanks the slide's headline.
func Parse(r io.Reader, slideCount int) (map[int]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	out := map[int]string{}
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOverride, err)
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), header[0]) {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected slide,headline", ErrInvalidOverride, line)
		}

		n, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: slide %q is not a number", ErrInvalidOverride, line, record[0])
		}
		if n < 1 || (slideCount > 0 && n > slideCount) {
			return nil, fmt.Errorf("%w: line %d: slide %d out of range 1-%d", ErrInvalidOverride, line, n, slideCount)
		}

		// Commas inside an unquoted headline split into extra fields.
		out[n-1] = strings.TrimSpace(strings.Join(record[1:], ","))
	}
	return out, nil
}

// Write emits overrides as CSV ordered by slide number.
func Write(w io.Writer, overrides map[int]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	positions := make([]int, 0, len(overrides))
	for pos := range overrides {
		positions = append(positions, pos)
	}
	slices.Sort(positions)

	for _, pos := range positions {
		if err := cw.Write([]string{strconv.Itoa(pos + 1), overrides[pos]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
