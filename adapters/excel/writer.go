package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// Sheet is a header plus rows of cell values
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// WriteXLSX writes sheets to a new workbook. The first sheet becomes active.
func WriteXLSX(w io.Writer, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		name := sh.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(DefaultSheet, name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		for c, h := range sh.Headers {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(name, cell, h); err != nil {
				return err
			}
		}
		for r, row := range sh.Rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				if err := f.SetCellValue(name, cell, v); err != nil {
					return err
				}
			}
		}
	}
	f.SetActiveSheet(0)

	_, err := f.WriteTo(w)
	return err
}

// WriteXLSXFile writes sheets to path
func WriteXLSXFile(path string, sheets ...Sheet) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteXLSX(out, sheets...); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// WriteCSVFile writes a header and string rows to path
func WriteCSVFile(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
