package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/matcalc/internal/model"
	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "label,shape,diameter,length,quantity\nshaft,circle,10,100,5\n", ','},
		{"semicolon", "label;shape;diameter;length;quantity\nshaft;circle;10;100;5\n", ';'},
		{"tab", "label\tshape\tdiameter\tlength\tquantity\nshaft\tcircle\t10\t100\t5\n", '\t'},
		{"pipe", "label|shape|diameter|length|quantity\nshaft|circle|10|100|5\n", '|'},
	}
	for _, tt := range tests {
		if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Label", "Kind", "Material", "Shape", "Diameter", "Length", "Quantity", "Cutting_Loss"}
	mapping, ok := DetectColumns(row)
	if !ok {
		t.Fatal("expected header to be detected")
	}
	if mapping[colLabel] != 0 || mapping[colShape] != 3 || mapping[colQuantity] != 6 || mapping[colCuttingLoss] != 7 {
		t.Errorf("unexpected mapping: %v", mapping)
	}
	if mapping[colThickness] != -1 {
		t.Errorf("absent column should map to -1, got %d", mapping[colThickness])
	}
}

func TestDetectColumns_Aliases(t *testing.T) {
	row := []string{"QTY", "Dia", "Kerf", "Product Name", "Plate Width", "length_plate"}
	mapping, ok := DetectColumns(row)
	if !ok {
		t.Fatal("expected header to be detected")
	}
	if mapping[colQuantity] != 0 || mapping[colDiameter] != 1 || mapping[colCuttingLoss] != 2 ||
		mapping[colLabel] != 3 || mapping[colPlateWidth] != 4 || mapping[colPlateLength] != 5 {
		t.Errorf("unexpected mapping: %v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, ok := DetectColumns([]string{"shaft", "rod", "steel", "circle", "10"})
	if ok {
		t.Error("data row should not be taken as a header")
	}
	for i, idx := range mapping {
		if idx != i {
			t.Fatalf("expected positional mapping, got %v", mapping)
		}
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

const mixedCSV = `label,kind,material,shape,diameter,width,height,length,quantity,cutting_loss,thickness,plate_width,plate_length
Shaft,rod,steel,circle,10,,,100,100,2,,,
Key,rod,brass,rectangle,,20,5,40,10,1.5,,,
Cover,plate,aluminum,,,,,,5,,10,100,200
`

func TestImportCSVFromReader_Mixed(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(mixedCSV), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Rows))
	}

	shaft := result.Rows[0]
	if shaft.Kind != model.FormRod || shaft.Rod == nil || shaft.Plate != nil {
		t.Fatalf("expected rod row, got %+v", shaft)
	}
	if shaft.Rod.Diameter != 10 || shaft.Rod.ProductLength != 100 || shaft.Rod.Quantity != 100 || shaft.Rod.CuttingLoss != 2 {
		t.Errorf("unexpected rod form: %+v", shaft.Rod)
	}
	if shaft.Rod.MaterialKey != "steel" || shaft.Label != "Shaft" || shaft.Line != 2 {
		t.Errorf("unexpected row metadata: %+v", shaft)
	}

	key := result.Rows[1]
	if key.Rod.Width != 20 || key.Rod.Height != 5 || key.Rod.Shape != "rectangle" {
		t.Errorf("unexpected rectangle form: %+v", key.Rod)
	}

	cover := result.Rows[2]
	if cover.Kind != model.FormPlate || cover.Plate == nil {
		t.Fatalf("expected plate row, got %+v", cover)
	}
	if cover.Plate.Thickness != 10 || cover.Plate.Width != 100 || cover.Plate.Length != 200 || cover.Plate.Quantity != 5 {
		t.Errorf("unexpected plate form: %+v", cover.Plate)
	}
}

func TestImportCSVFromReader_PlateInferredFromThickness(t *testing.T) {
	data := "label,thickness,width,length,quantity\nLid,3,150,250,2\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 1 || result.Rows[0].Plate == nil {
		t.Fatalf("expected one plate row, got %+v", result.Rows)
	}
	p := result.Rows[0].Plate
	if p.Width != 150 || p.Length != 250 {
		t.Errorf("plate should fall back to width/length columns: %+v", p)
	}
}

func TestImportCSVFromReader_RowErrorsAreCollected(t *testing.T) {
	data := `label,shape,diameter,length,quantity
Good,circle,10,100,5
BadShape,octagon,10,100,5
BadQty,circle,10,100,many
ZeroQty,circle,10,100,0
NoLength,circle,10,,5
BadDia,square,ten,100,5
Also good,hexagon,12,50,3
`
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rows) != 2 {
		t.Errorf("expected 2 valid rows, got %d", len(result.Rows))
	}
	if len(result.Errors) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	wantFragments := []string{"Unknown shape 'octagon'", "Invalid quantity 'many'", "Quantity must be positive", "Missing length", "Invalid diameter 'ten'"}
	for i, frag := range wantFragments {
		if !strings.Contains(result.Errors[i], frag) {
			t.Errorf("error %d = %q, want it to contain %q", i, result.Errors[i], frag)
		}
	}
}

func TestImportCSVFromReader_UnknownKind(t *testing.T) {
	data := "label,kind,shape,diameter,length,quantity\nX,tube,circle,10,100,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Unknown kind 'tube'") {
		t.Errorf("expected unknown kind error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_MissingQuantityColumn(t *testing.T) {
	data := "label,shape,diameter,length\nShaft,circle,10,100\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Quantity") {
		t.Errorf("expected missing column error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyRowsAndLabels(t *testing.T) {
	data := "label,shape,diameter,length,quantity\n,circle,10,100,1\n,,,,\n\n,square,8,50,2\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if result.Rows[0].Label != "Item 1" || result.Rows[1].Label != "Item 2" {
		t.Errorf("expected generated labels, got %q %q", result.Rows[0].Label, result.Rows[1].Label)
	}
}

func TestImportCSVFromReader_MissingMaterialWarns(t *testing.T) {
	data := "label,shape,diameter,length,quantity\nShaft,circle,10,100,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "No material given") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing material warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.csv")
	data := "label;shape;diameter;length;quantity\nShaft;circle;10;100;5\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportFile(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected delimiter warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportCSV(path)
	if len(result.Errors) != 1 || result.Errors[0] != "File is empty" {
		t.Errorf("expected empty file error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Label", "Material", "Shape", "Diameter", "Length", "Qty", "Kerf"},
		{"Shaft", "steel", "circle", 10, 100, 100, 2},
		{"Pin", "brass", "hexagon", 12.5, 30, 40, 1},
	})

	result := ImportFile(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if result.Rows[1].Rod.Diameter != 12.5 || result.Rows[1].Rod.MaterialKey != "brass" {
		t.Errorf("unexpected second row: %+v", result.Rows[1].Rod)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── BuildBatchItems Tests ─────────────────────────────────

func TestBuildBatchItems(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(mixedCSV+"Odd,rod,mithril,square,8,,,50,2,,,,\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected import errors: %v", result.Errors)
	}

	items, errs, warnings := BuildBatchItems(result.Rows, model.DefaultCatalog(), model.FactoryDefaults())
	if len(errs) > 0 {
		t.Fatalf("unexpected build errors: %v", errs)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}

	shaft := items[0]
	if shaft.Rod == nil || shaft.MaterialKey != "steel" {
		t.Fatalf("unexpected first item: %+v", shaft)
	}
	if shaft.Rod.MaterialDensity != 7850 || shaft.Rod.HeadCut != 20 || shaft.Rod.TailCut != 250 {
		t.Errorf("catalog and defaults not applied: %+v", shaft.Rod)
	}

	if items[2].Plate == nil || items[2].Plate.MaterialDensity != 2800 {
		t.Errorf("expected aluminum plate, got %+v", items[2])
	}

	if items[3].MaterialKey != model.FallbackMaterialKey {
		t.Errorf("unknown material should fall back, got %q", items[3].MaterialKey)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "mithril") {
		t.Errorf("expected unknown material warning, got %v", warnings)
	}
}
