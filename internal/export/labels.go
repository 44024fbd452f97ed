package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/matcalc/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// BarTag holds the data encoded into each bar tag's QR code.
type BarTag struct {
	OrderID  string  `json:"order"`
	Material string  `json:"material"`
	Bar      int     `json:"bar"`
	Bars     int     `json:"bars"`
	Pieces   int     `json:"pieces"`
	Length   float64 `json:"length_mm"`  // Finished piece length including cutting loss
	Remnant  float64 `json:"remnant_mm"` // Leftover after the last piece
	Reusable bool    `json:"reusable"`
}

// Tag layout constants for Avery 5160-compatible sheets (3 columns, 10 rows per page).
// Each tag cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	tagMarginTop  = 12.7 // mm
	tagMarginLeft = 4.8  // mm
	tagWidth      = 66.7 // mm per tag
	tagHeight     = 25.4 // mm per tag
	tagCols       = 3
	tagRows       = 10
	tagsPerPage   = tagCols * tagRows
	qrSize        = 20.0 // QR code size in mm
	tagPadding    = 2.0  // mm internal padding
)

// CollectBarTags builds one tag per bar of the plan.
func CollectBarTags(orderID, material string, plan model.CutPlan) []BarTag {
	tags := make([]BarTag, 0, len(plan.Bars))
	for _, bar := range plan.Bars {
		tags = append(tags, BarTag{
			OrderID:  orderID,
			Material: material,
			Bar:      bar.Index,
			Bars:     len(plan.Bars),
			Pieces:   bar.Pieces,
			Length:   plan.UnitLength,
			Remnant:  bar.Remnant,
			Reusable: bar.Reusable,
		})
	}
	return tags
}

// ExportBarTags generates a PDF of QR-coded tags, one per bar of the cut
// plan, so each bar can be identified at the saw. Tags are laid out on a
// standard label sheet (Avery 5160, 3 columns x 10 rows on US Letter).
func ExportBarTags(path, orderID, material string, plan model.CutPlan) error {
	pdf, err := buildBarTagsPDF(CollectBarTags(orderID, material, plan))
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WriteBarTags streams the bar tag sheet to w.
func WriteBarTags(w io.Writer, orderID, material string, plan model.CutPlan) error {
	pdf, err := buildBarTagsPDF(CollectBarTags(orderID, material, plan))
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildBarTagsPDF(tags []BarTag) (*fpdf.Fpdf, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("cut plan has no bars to tag")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, tag := range tags {
		if i%tagsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % tagsPerPage
		col := posOnPage % tagCols
		row := posOnPage / tagCols

		x := tagMarginLeft + float64(col)*tagWidth
		y := tagMarginTop + float64(row)*tagHeight

		if err := renderTag(pdf, tr, x, y, tag); err != nil {
			return nil, fmt.Errorf("failed to render tag for bar %d: %w", tag.Bar, err)
		}
	}
	return pdf, nil
}

func renderTag(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, tag BarTag) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, tagWidth, tagHeight, "D")

	qrData, err := json.Marshal(tag)
	if err != nil {
		return fmt.Errorf("failed to marshal tag: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", tag.OrderID, tag.Bar)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + tagWidth - qrSize - tagPadding
	qrY := y + (tagHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + tagPadding
	textW := tagWidth - qrSize - 3*tagPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+tagPadding)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("Bar %d / %d", tag.Bar, tag.Bars), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+tagPadding+5)
	pdf.CellFormat(textW, 3.5, truncate(pdf, tr(tag.Material), textW), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+tagPadding+8.5)
	pieces := fmt.Sprintf("%d x %s mm", tag.Pieces, formatNumber(tag.Length, 1))
	pdf.CellFormat(textW, 3.5, pieces, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	if tag.Reusable {
		pdf.SetTextColor(180, 100, 0)
	} else {
		pdf.SetTextColor(100, 100, 100)
	}
	pdf.SetXY(textX, y+tagPadding+12.5)
	rest := fmt.Sprintf("Rest %s mm", formatNumber(tag.Remnant, 0))
	if tag.Reusable {
		rest += " (keep)"
	}
	pdf.CellFormat(textW, 3, rest, "", 1, "L", false, 0, "")

	if tag.OrderID != "" {
		pdf.SetTextColor(100, 100, 100)
		pdf.SetXY(textX, y+tagPadding+16)
		pdf.CellFormat(textW, 3, truncate(pdf, tag.OrderID, textW), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// truncate shortens s with an ellipsis until it fits in w at the current font.
func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}
