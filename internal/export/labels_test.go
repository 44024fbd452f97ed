package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/matcalc/internal/engine"
	"github.com/piwi3910/matcalc/internal/model"
)

func TestCollectBarTags(t *testing.T) {
	plan, err := engine.PlanCuts(testRodSpec())
	if err != nil {
		t.Fatal(err)
	}
	tags := CollectBarTags("order-1", "steel", plan)

	if len(tags) != 5 {
		t.Fatalf("expected 5 tags, got %d", len(tags))
	}
	for i, tag := range tags {
		if tag.Bar != i+1 || tag.Bars != 5 {
			t.Errorf("tag %d numbered %d/%d", i, tag.Bar, tag.Bars)
		}
		if tag.OrderID != "order-1" || tag.Material != "steel" {
			t.Errorf("tag %d has wrong order or material: %+v", i, tag)
		}
		if tag.Length != 102 {
			t.Errorf("tag %d length = %v, want 102", i, tag.Length)
		}
	}
	if tags[0].Pieces != 21 || tags[0].Reusable {
		t.Errorf("first bar = %+v, want 21 pieces and no reusable remnant", tags[0])
	}
	last := tags[4]
	if last.Pieces != 16 || !last.Reusable || last.Remnant != 598 {
		t.Errorf("last bar = %+v, want 16 pieces with a reusable 598 mm remnant", last)
	}
}

func TestBarTag_JSONKeys(t *testing.T) {
	data, err := json.Marshal(BarTag{OrderID: "o", Material: "brass", Bar: 2, Pieces: 3, Remnant: 12.5})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"order", "material", "bar", "pieces", "remnant_mm"} {
		if _, ok := m[key]; !ok {
			t.Errorf("QR payload missing key %q: %s", key, data)
		}
	}
}

func TestExportBarTags(t *testing.T) {
	spec := testRodSpec()
	spec.Quantity = 700 // 34 bars, spills onto a second page
	plan, err := engine.PlanCuts(spec)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Bars) <= tagsPerPage {
		t.Fatalf("expected more than one page of tags, got %d bars", len(plan.Bars))
	}

	path := filepath.Join(t.TempDir(), "tags.pdf")
	if err := ExportBarTags(path, "order-1", "SUM24L/S45C", plan); err != nil {
		t.Fatalf("ExportBarTags returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportBarTags_EmptyPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportBarTags(path, "order-1", "steel", model.CutPlan{}); err == nil {
		t.Fatal("expected error for empty plan, got nil")
	}
}

func TestWriteBarTags(t *testing.T) {
	plan, err := engine.PlanCuts(testRodSpec())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteBarTags(&buf, "order-1", "steel", plan); err != nil {
		t.Fatalf("WriteBarTags returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if err := WriteBarTags(&buf, "order-1", "steel", model.CutPlan{}); err == nil {
		t.Error("expected error for empty plan")
	}
}
