// Package importer reads batch calculation sheets from CSV and Excel files,
// cross-sections from DXF drawings and material catalogs from YAML or JSON.
// Sheets get automatic delimiter detection, flexible column mapping and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/matcalc/internal/engine"
	"github.com/piwi3910/matcalc/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Rows     []BatchRow
	Errors   []string
	Warnings []string
}

// BatchRow is one parsed sheet line. Exactly one of Rod or Plate is set.
// Materials are resolved later, against the catalog in use.
type BatchRow struct {
	Line  int
	Label string
	Kind  model.StockForm
	Rod   *model.RodForm
	Plate *model.PlateForm
}

// Column roles, in positional order for sheets without a header.
const (
	colLabel = iota
	colKind
	colMaterial
	colShape
	colDiameter
	colWidth
	colHeight
	colLength
	colQuantity
	colCuttingLoss
	colThickness
	colPlateWidth
	colPlateLength
	numColumns
)

var columnNames = [numColumns]string{
	"label", "kind", "material", "shape", "diameter", "width", "height",
	"length", "quantity", "cutting_loss", "thickness", "plate_width", "plate_length",
}

// ColumnMapping maps each column role to its index in the data, or -1.
type ColumnMapping [numColumns]int

// headerAliases maps column roles to their accepted aliases (all lowercase).
var headerAliases = map[int][]string{
	colLabel:       {"label", "name", "product", "product name", "part", "description", "item"},
	colKind:        {"kind", "type", "form", "stock"},
	colMaterial:    {"material", "mat", "material key", "materialkey", "grade"},
	colShape:       {"shape", "profile", "section"},
	colDiameter:    {"diameter", "dia", "d", "od"},
	colWidth:       {"width", "w"},
	colHeight:      {"height", "h"},
	colLength:      {"length", "len", "l", "product length", "productlength"},
	colQuantity:    {"quantity", "qty", "count", "pcs", "pieces"},
	colCuttingLoss: {"cutting_loss", "cutting loss", "cuttingloss", "kerf"},
	colThickness:   {"thickness", "t", "plate_thickness", "platethickness"},
	colPlateWidth:  {"plate_width", "plate width", "platewidth", "width_plate"},
	colPlateLength: {"plate_length", "plate length", "platelength", "length_plate"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := newCSVReader(bytes.NewReader(data), delim)
		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}
		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}
	return bestDelimiter
}

func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	var mapping ColumnMapping
	for i := range mapping {
		mapping[i] = -1
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias && mapping[role] == -1 {
					mapping[role] = i
					isHeader = true
				}
			}
		}
	}

	if !isHeader {
		for i := range mapping {
			mapping[i] = i
		}
		return mapping, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// rowParser pulls typed values out of one row and remembers the first failure.
type rowParser struct {
	row      []string
	mapping  ColumnMapping
	rowLabel string
	err      string
}

func (p *rowParser) text(col int) string {
	return getCell(p.row, p.mapping[col])
}

// number parses an optional decimal column; empty cells are zero.
func (p *rowParser) number(col int) float64 {
	s := p.text(col)
	if s == "" || p.err != "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Sprintf("%s: Invalid %s '%s'", p.rowLabel, columnNames[col], s)
		return 0
	}
	return v
}

func (p *rowParser) required(col int) float64 {
	if p.err == "" && p.text(col) == "" {
		p.err = fmt.Sprintf("%s: Missing %s value", p.rowLabel, columnNames[col])
		return 0
	}
	return p.number(col)
}

func (p *rowParser) quantity() int {
	s := p.text(colQuantity)
	if p.err != "" {
		return 0
	}
	if s == "" {
		p.err = fmt.Sprintf("%s: Missing quantity value", p.rowLabel)
		return 0
	}
	qty, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Sprintf("%s: Invalid quantity '%s'", p.rowLabel, s)
		return 0
	}
	if qty <= 0 {
		p.err = fmt.Sprintf("%s: Quantity must be positive", p.rowLabel)
		return 0
	}
	return qty
}

// parseKind reads the kind column, inferring plate from a thickness value
// when the column is absent or blank.
func parseKind(p *rowParser) (model.StockForm, bool) {
	switch strings.ToLower(p.text(colKind)) {
	case "rod", "bar", "r":
		return model.FormRod, true
	case "plate", "sheet", "p":
		return model.FormPlate, true
	case "":
		if p.text(colThickness) != "" {
			return model.FormPlate, true
		}
		return model.FormRod, true
	default:
		return "", false
	}
}

// parseRow extracts a BatchRow using the given column mapping.
// Returns the row, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, line, rowCount int) (BatchRow, string, string) {
	p := &rowParser{row: row, mapping: mapping, rowLabel: rowLabel}

	label := p.text(colLabel)
	if label == "" {
		label = fmt.Sprintf("Item %d", rowCount+1)
	}
	kind, ok := parseKind(p)
	if !ok {
		return BatchRow{}, fmt.Sprintf("%s: Unknown kind '%s' (expected rod or plate)", rowLabel, p.text(colKind)), ""
	}

	out := BatchRow{Line: line, Label: label, Kind: kind}
	material := strings.ToLower(p.text(colMaterial))
	var warning string
	if material == "" {
		warning = fmt.Sprintf("%s: No material given, using %s", rowLabel, model.FallbackMaterialKey)
	}
	meta := model.OrderMeta{ProductName: label}

	if kind == model.FormPlate {
		plate := &model.PlateForm{
			MaterialKey: material,
			Thickness:   p.required(colThickness),
			Width:       p.number(colPlateWidth),
			Length:      p.number(colPlateLength),
			Order:       meta,
		}
		// Plate sheets often reuse the generic width/length columns.
		if plate.Width == 0 {
			plate.Width = p.required(colWidth)
		}
		if plate.Length == 0 {
			plate.Length = p.required(colLength)
		}
		plate.Quantity = p.quantity()
		if p.err != "" {
			return BatchRow{}, p.err, ""
		}
		out.Plate = plate
		return out, "", warning
	}

	shape := p.text(colShape)
	if shape == "" {
		return BatchRow{}, fmt.Sprintf("%s: Missing shape value", rowLabel), ""
	}
	if _, err := model.ParseShape(shape); err != nil {
		return BatchRow{}, fmt.Sprintf("%s: Unknown shape '%s'", rowLabel, shape), ""
	}
	rod := &model.RodForm{
		MaterialKey:   material,
		Shape:         shape,
		Diameter:      p.number(colDiameter),
		Width:         p.number(colWidth),
		Height:        p.number(colHeight),
		ProductLength: p.required(colLength),
		CuttingLoss:   p.number(colCuttingLoss),
		Order:         meta,
	}
	rod.Quantity = p.quantity()
	if p.err != "" {
		return BatchRow{}, p.err, ""
	}
	out.Rod = rod
	return out, "", warning
}

// ImportFile dispatches on the file extension: .xlsx and .xlsm go to
// ImportExcel, everything else is read as CSV.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}

// ImportCSV imports batch rows from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := newCSVReader(bytes.NewReader(data), delimiter).ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports batch rows from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	records, err := newCSVReader(reader, delimiter).ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports batch rows from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		if mapping[colQuantity] == -1 {
			result.Errors = append(result.Errors, "Required columns not found in header: Quantity")
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		parsed, errMsg, warning := parseRow(row, mapping, rowLabel, lineNum, len(result.Rows))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Rows = append(result.Rows, parsed)
	}

	return result
}

// BuildBatchItems resolves parsed rows against a catalog and the user
// defaults. Rows that cannot be turned into a spec are reported as errors;
// unknown materials fall back to the default material with a warning.
func BuildBatchItems(rows []BatchRow, cat model.Catalog, defaults model.DefaultsConfig) ([]engine.BatchItem, []string, []string) {
	var (
		items    []engine.BatchItem
		errs     []string
		warnings []string
	)
	lookup := func(line int, key string) model.MaterialDefaults {
		mat, ok := cat.Lookup(key)
		if !ok && key != "" {
			warnings = append(warnings, fmt.Sprintf("Line %d: Unknown material '%s', using %s", line, key, mat.Key))
		}
		return mat
	}

	for _, row := range rows {
		switch {
		case row.Rod != nil:
			mat := lookup(row.Line, row.Rod.MaterialKey)
			spec, err := model.BuildRodSpec(*row.Rod, mat, defaults)
			if err != nil {
				errs = append(errs, fmt.Sprintf("Line %d: %v", row.Line, err))
				continue
			}
			items = append(items, engine.BatchItem{Label: row.Label, MaterialKey: mat.Key, Rod: &spec})
		case row.Plate != nil:
			mat := lookup(row.Line, row.Plate.MaterialKey)
			spec := model.BuildPlateSpec(*row.Plate, mat, defaults)
			items = append(items, engine.BatchItem{Label: row.Label, MaterialKey: mat.Key, Plate: &spec})
		}
	}
	return items, errs, warnings
}
