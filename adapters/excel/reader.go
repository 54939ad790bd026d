package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gundash/domain/core"
	"gundash/domain/incident"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet read from .xlsx sources when present
const DefaultSheet = "Sheet1"

// DataReader loads incident tables from CSV or Excel files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Path returns the source path
func (r *DataReader) Path() string { return r.filePath }

// Stat reports the size and modification time of the source
func (r *DataReader) Stat() (int64, time.Time, error) {
	info, err := os.Stat(r.filePath)
	if err != nil {
		return 0, time.Time{}, err
	}
	return info.Size(), info.ModTime(), nil
}

// Read parses the whole file into an immutable table
func (r *DataReader) Read(ctx context.Context) (*incident.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("[DataReader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s file not found: %s", core.ErrNotFound, strings.ToUpper(r.fileType), r.filePath)
	}

	start := time.Now()
	var (
		tbl *incident.Table
		err error
	)
	switch r.fileType {
	case "csv":
		tbl, err = r.readCSV()
	case "xlsx":
		tbl, err = r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] Loaded %d rows, %d columns in %.2fms",
		tbl.Len(), len(tbl.Fields()), float64(time.Since(start).Nanoseconds())/1e6)
	return tbl, nil
}

func (r *DataReader) readCSV() (*incident.Table, error) {
	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	tbl, err := ReadCSV(r.filePath, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return tbl.WithFingerprint(core.NewHash(raw)), nil
}

// ReadCSV parses CSV content into a table
func ReadCSV(source string, in io.Reader) (*incident.Table, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return tableFromRows(source, rows)
}

func (r *DataReader) readExcel() (*incident.Table, error) {
	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := DefaultSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	tbl, err := tableFromRows(r.filePath, rows)
	if err != nil {
		return nil, err
	}
	return tbl.WithFingerprint(core.NewHash(raw)), nil
}

// tableFromRows treats the first row as the header
func tableFromRows(source string, rows [][]string) (*incident.Table, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: %s has no header row", core.ErrEmptyDataset, source)
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	}
	return incident.NewTable(source, header, rows[1:])
}
