// Package export renders calculation results and order history into
// printable and spreadsheet formats.
package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/matcalc/internal/model"
)

// segmentColor represents an RGB fill used in the bar diagrams.
type segmentColor struct {
	R, G, B int
}

var (
	pieceColors = []segmentColor{
		{R: 76, G: 175, B: 80},  // green
		{R: 33, G: 150, B: 243}, // blue
	}
	cutColor      = segmentColor{R: 40, G: 40, B: 40}
	reusableColor = segmentColor{R: 255, G: 152, B: 0}
	scrapColor    = segmentColor{R: 244, G: 67, B: 54}
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
	rowHeight    = 6.0
	barHeight    = 7.0
)

// Quote is everything printed on a quote document. Exactly one of Rod and
// Plate must be set. Plan is optional and only meaningful for rods.
type Quote struct {
	Title    string
	OrderID  string
	Meta     model.OrderMeta
	Material model.MaterialDefaults
	Rod      *model.RodSpec
	Plate    *model.PlateSpec
	Result   model.CalculationResult
	Plan     *model.CutPlan
	Created  time.Time
}

// ExportQuotePDF writes a one-or-more page quote: header, inputs, results,
// advisory warnings and, when a cut plan is attached, a bar-by-bar diagram.
func ExportQuotePDF(path string, q Quote) error {
	pdf, err := buildQuotePDF(q)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WriteQuotePDF streams the quote document to w.
func WriteQuotePDF(w io.Writer, q Quote) error {
	pdf, err := buildQuotePDF(q)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildQuotePDF(q Quote) (*fpdf.Fpdf, error) {
	if (q.Rod == nil) == (q.Plate == nil) {
		return nil, fmt.Errorf("quote needs exactly one of a rod or a plate spec")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	y := renderHeader(pdf, tr, q)
	y = renderTable(pdf, tr, y, "Input", quoteInputs(q))
	y = renderTable(pdf, tr, y, "Result", quoteResults(q.Result))
	y = renderWarnings(pdf, tr, y, q.Result.Warnings)
	if q.Plan != nil && len(q.Plan.Bars) > 0 {
		renderCutPlan(pdf, y, *q.Plan)
	}
	renderFooters(pdf)
	return pdf, pdf.Error()
}

// renderHeader draws the title block and returns the next free y position.
func renderHeader(pdf *fpdf.Fpdf, tr func(string) string, q Quote) float64 {
	title := q.Title
	if title == "" {
		title = "Material Cost Quote"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, 10, tr(title), "", 0, "L", false, 0, "")

	created := q.Created
	if created.IsZero() {
		created = time.Now()
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, 10, created.Format("2006-01-02 15:04"), "", 0, "R", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 15
	var meta []string
	if q.OrderID != "" {
		meta = append(meta, "Order "+q.OrderID)
	}
	if q.Meta.Customer != "" {
		meta = append(meta, "Customer: "+q.Meta.Customer)
	}
	if q.Meta.ProductName != "" {
		meta = append(meta, "Product: "+q.Meta.ProductName)
	}
	if q.Meta.DeliveryDate != "" {
		meta = append(meta, "Delivery: "+q.Meta.DeliveryDate)
	}
	for _, line := range meta {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(contentWidth, 5, tr(line), "", 0, "L", false, 0, "")
		y += 5
	}
	pdf.SetTextColor(0, 0, 0)
	return y + 3
}

type tableRow struct {
	label string
	value string
}

func quoteInputs(q Quote) []tableRow {
	material := q.Material.Name
	if material == "" {
		material = q.Material.Key
	}
	rows := []tableRow{{"Material", material}}

	if s := q.Plate; s != nil {
		return append(rows,
			tableRow{"Plate", fmt.Sprintf("%s x %s x %s mm", formatNumber(s.Thickness, 1), formatNumber(s.Width, 1), formatNumber(s.Length, 1))},
			tableRow{"Quantity", fmt.Sprintf("%d", s.Quantity)},
			tableRow{"Density", fmt.Sprintf("%s g/cm³", formatNumber(model.KgPerM3ToGPerCm3(s.MaterialDensity), 3))},
			tableRow{"Unit price", formatMoney(s.PlateUnitPrice) + " /kg"},
		)
	}

	s := q.Rod
	rows = append(rows,
		tableRow{"Section", sectionLabel(*s)},
		tableRow{"Product length", formatNumber(s.ProductLength, 1) + " mm"},
		tableRow{"Quantity", fmt.Sprintf("%d", s.Quantity)},
		tableRow{"Cutting loss", formatNumber(s.CuttingLoss, 1) + " mm"},
		tableRow{"Head / tail cut", fmt.Sprintf("%s / %s mm", formatNumber(s.HeadCut, 1), formatNumber(s.TailCut, 1))},
		tableRow{"Standard bar", formatNumber(s.StandardBarLength, 0) + " mm"},
		tableRow{"Density", fmt.Sprintf("%s g/cm³", formatNumber(model.KgPerM3ToGPerCm3(s.MaterialDensity), 3))},
		tableRow{"Unit price", formatMoney(s.MaterialPrice) + " /kg"},
	)
	if s.ScrapActive() {
		rows = append(rows,
			tableRow{"Actual piece weight", formatNumber(*s.ActualProductWeight, 1) + " g"},
			tableRow{"Recovery ratio", formatNumber(*s.RecoveryRatio, 1) + " %"},
			tableRow{"Scrap price", formatMoney(*s.ScrapUnitPrice) + " /kg"},
		)
	}
	return rows
}

func sectionLabel(s model.RodSpec) string {
	if s.Shape.UsesWidthHeight() {
		return fmt.Sprintf("%s %s x %s mm", s.Shape, formatNumber(s.Width, 1), formatNumber(s.Height, 1))
	}
	return fmt.Sprintf("%s %s mm", s.Shape, formatNumber(s.Diameter, 1))
}

func quoteResults(r model.CalculationResult) []tableRow {
	var rows []tableRow
	if !r.IsPlate {
		rows = append(rows,
			tableRow{"Bars needed", fmt.Sprintf("%d", r.BarsNeeded)},
			tableRow{"Pieces per bar", fmt.Sprintf("%d", r.PiecesPerBar)},
		)
	}
	rows = append(rows,
		tableRow{"Stock weight", formatNumber(r.StockWeightKg, 3) + " kg"},
		tableRow{"Product weight", formatNumber(r.ProductWeightKg, 3) + " kg"},
		tableRow{"Material cost", formatMoney(r.MaterialCost)},
		tableRow{"Cost per piece", formatMoney(r.CostPerPiece)},
		tableRow{"Utilization", formatNumber(r.UtilizationRate, 2) + " %"},
		tableRow{"Wastage", formatNumber(r.Wastage, 2) + " %"},
	)
	if r.ScrapActive() {
		rows = append(rows,
			tableRow{"Scrap weight", formatNumber(*r.ScrapWeightKg, 3) + " kg"},
			tableRow{"Scrap savings", formatMoney(*r.ScrapSavings)},
			tableRow{"Real cost", formatMoney(*r.RealCost)},
		)
	}
	return rows
}

// renderTable draws a titled two-column table and returns the next free y.
func renderTable(pdf *fpdf.Fpdf, tr func(string) string, y float64, title string, rows []tableRow) float64 {
	y = ensureSpace(pdf, y, 9+rowHeight*2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth, 7, tr(title), "", 0, "L", false, 0, "")
	y += 9

	labelW := contentWidth * 0.4
	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		y = ensureSpace(pdf, y, rowHeight)
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(labelW, rowHeight, tr(row.label), "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentWidth-labelW, rowHeight, tr(row.value), "1", 0, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		y += rowHeight
	}
	return y + 5
}

// renderWarnings lists advisory findings, coloured by severity.
func renderWarnings(pdf *fpdf.Fpdf, tr func(string) string, y float64, warnings []model.ValidationWarning) float64 {
	if len(warnings) == 0 {
		return y
	}
	y = ensureSpace(pdf, y, 9+5)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth, 7, "Notes", "", 0, "L", false, 0, "")
	y += 9

	pdf.SetFont("Helvetica", "", 9)
	for _, w := range warnings {
		switch w.Kind {
		case model.WarningError:
			pdf.SetTextColor(200, 0, 0)
		case model.WarningWarn:
			pdf.SetTextColor(180, 100, 0)
		default:
			pdf.SetTextColor(60, 60, 60)
		}
		text := fmt.Sprintf("[%s] %s", w.Kind, w.Message)
		if w.Suggestion != "" {
			text += " - " + w.Suggestion
		}
		y = ensureSpace(pdf, y, 5)
		pdf.SetXY(marginLeft+3, y)
		pdf.MultiCell(contentWidth-3, 5, tr(text), "", "L", false)
		y = pdf.GetY()
	}
	pdf.SetTextColor(0, 0, 0)
	return y + 5
}

// renderCutPlan draws one strip per bar: head cut, pieces, remnant, tail cut.
func renderCutPlan(pdf *fpdf.Fpdf, y float64, plan model.CutPlan) {
	y = ensureSpace(pdf, y, 9+barHeight+6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth, 7, "Cut Plan", "", 0, "L", false, 0, "")
	y += 9

	labelW := 14.0
	infoW := 40.0
	stripW := contentWidth - labelW - infoW
	scale := stripW / plan.StandardBarLength

	for _, bar := range plan.Bars {
		y = ensureSpace(pdf, y, barHeight+3)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(labelW, barHeight, fmt.Sprintf("#%d", bar.Index), "", 0, "L", false, 0, "")

		drawBar(pdf, marginLeft+labelW, y, scale, plan, bar)

		pdf.SetFont("Helvetica", "", 7)
		pdf.SetXY(marginLeft+labelW+stripW+2, y)
		info := fmt.Sprintf("%d pcs, rest %s mm", bar.Pieces, formatNumber(bar.Remnant, 0))
		pdf.CellFormat(infoW-2, barHeight, info, "", 0, "L", false, 0, "")
		y += barHeight + 3
	}

	y = ensureSpace(pdf, y, 10)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(marginLeft, y+2)
	summary := fmt.Sprintf("%d bars, %d pieces, %d reusable remnants (>= %s mm), total remnant %s mm",
		len(plan.Bars), plan.TotalPieces(), len(plan.ReusableRemnants()),
		formatNumber(model.MinReusableRemnant, 0), formatNumber(plan.TotalRemnant(), 0))
	pdf.CellFormat(contentWidth, 5, summary, "", 0, "L", false, 0, "")
}

func drawBar(pdf *fpdf.Fpdf, x, y, scale float64, plan model.CutPlan, bar model.BarCut) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)

	headW := bar.HeadCut * scale
	drawHatchPattern(pdf, x, y, headW, barHeight)
	cursor := x + headW

	// Each unit is a piece plus its cutting loss; a dark line marks the cut.
	unitW := plan.UnitLength * scale
	for i := 0; i < bar.Pieces; i++ {
		col := pieceColors[i%len(pieceColors)]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(cursor, y, unitW, barHeight, "F")
		cursor += unitW
		pdf.SetDrawColor(cutColor.R, cutColor.G, cutColor.B)
		pdf.Line(cursor, y, cursor, y+barHeight)
	}

	if bar.Remnant > 0 {
		col := scrapColor
		if bar.Reusable {
			col = reusableColor
		}
		w := bar.Remnant * scale
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(cursor, y, w, barHeight, "F")
		cursor += w
	}

	drawHatchPattern(pdf, cursor, y, bar.TailCut*scale, barHeight)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Rect(x, y, plan.StandardBarLength*scale, barHeight, "D")
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark material
// that is cut off and never becomes product.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	if w <= 0 {
		return
	}
	pdf.SetFillColor(235, 235, 235)
	pdf.Rect(x, y, w, h, "F")
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 2.0
	maxDist := w + h

	for d := spacing; d < maxDist; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)

		pdf.Line(x1, y1, x2, y2)
	}
}

// ensureSpace starts a new page when fewer than need mm remain on this one.
func ensureSpace(pdf *fpdf.Fpdf, y, need float64) float64 {
	if y+need <= pageHeight-marginBottom-6 {
		return y
	}
	pdf.AddPage()
	return marginTop
}

func renderFooters(pdf *fpdf.Fpdf) {
	pages := pdf.PageCount()
	for i := 1; i <= pages; i++ {
		pdf.SetPage(i)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.SetXY(marginLeft, pageHeight-marginBottom)
		footer := fmt.Sprintf("Generated by matcalc - page %d of %d", i, pages)
		pdf.CellFormat(contentWidth, 4, footer, "", 0, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}
