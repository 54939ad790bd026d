package intent

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gundash/domain/artifact"

	"gonum.org/v1/gonum/mat"
)

// fitColumns infers how each raw column is encoded. A column whose cells all
// parse as numbers passes through, a column of true/false passes through as
// 0/1, anything else is one-hot encoded over its sorted levels.
func fitColumns(f *Frame) []artifact.Column {
	cols := make([]artifact.Column, len(f.Columns))
	for j, name := range f.Columns {
		numeric, boolean := true, true
		levels := make(map[string]bool)
		for _, row := range f.Rows {
			cell := row[j]
			levels[cell] = true
			if numeric {
				if _, err := strconv.ParseFloat(cell, 64); err != nil {
					numeric = false
				}
			}
			if boolean {
				if _, ok := parseBool(cell); !ok {
					boolean = false
				}
			}
		}
		switch {
		case numeric:
			cols[j] = artifact.Column{Name: name, Kind: artifact.KindNumeric}
		case boolean:
			cols[j] = artifact.Column{Name: name, Kind: artifact.KindBoolean}
		default:
			lv := make([]string, 0, len(levels))
			for l := range levels {
				lv = append(lv, l)
			}
			slices.Sort(lv)
			cols[j] = artifact.Column{Name: name, Kind: artifact.KindCategorical, Levels: lv}
		}
	}
	return cols
}

// featureNames lists pass-through columns first, then one indicator per
// categorical level named <column>_<level>
func featureNames(cols []artifact.Column) []string {
	var names []string
	for _, c := range cols {
		if c.Kind != artifact.KindCategorical {
			names = append(names, c.Name)
		}
	}
	for _, c := range cols {
		if c.Kind == artifact.KindCategorical {
			for _, l := range c.Levels {
				names = append(names, c.Name+"_"+l)
			}
		}
	}
	return names
}

// encodeRow writes the feature vector of one raw row into dst. Unseen
// categorical levels encode as all zeros.
func encodeRow(cols []artifact.Column, raw []string, dst []float64) error {
	pos := 0
	for j, c := range cols {
		switch c.Kind {
		case artifact.KindNumeric:
			v, err := strconv.ParseFloat(strings.TrimSpace(raw[j]), 64)
			if err != nil {
				return fmt.Errorf("column %s: %q is not a number", c.Name, raw[j])
			}
			dst[pos] = v
			pos++
		case artifact.KindBoolean:
			b, ok := parseBool(raw[j])
			if !ok {
				return fmt.Errorf("column %s: %q is not true or false", c.Name, raw[j])
			}
			dst[pos] = 0
			if b {
				dst[pos] = 1
			}
			pos++
		}
	}
	for j, c := range cols {
		if c.Kind != artifact.KindCategorical {
			continue
		}
		for _, l := range c.Levels {
			dst[pos] = 0
			if raw[j] == l {
				dst[pos] = 1
			}
			pos++
		}
	}
	return nil
}

// encodeFrame one-hot encodes the selected rows into a dense matrix
func encodeFrame(cols []artifact.Column, width int, f *Frame, rows []int) (*mat.Dense, error) {
	x := mat.NewDense(len(rows), width, nil)
	for i, r := range rows {
		if err := encodeRow(cols, f.Rows[r], x.RawRowView(i)); err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
	}
	return x, nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
