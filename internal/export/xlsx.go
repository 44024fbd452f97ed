package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/piwi3910/matcalc/internal/model"
	"github.com/xuri/excelize/v2"
)

const ordersSheet = "Orders"

// orderColumns is the header row of the history workbook. Cell values are
// produced by orderRow in the same order.
var orderColumns = []string{
	"ID", "Timestamp", "Product", "Customer", "Delivery Date", "Delivery Unit Price",
	"Material", "Form", "Shape", "Diameter", "Width", "Height",
	"Plate Thickness", "Plate Width", "Plate Length",
	"Product Length", "Quantity", "Cutting Loss", "Head Cut", "Tail Cut", "Bar Length",
	"Density (kg/m³)", "Price (/kg)",
	"Bars Needed", "Pieces per Bar", "Stock Weight (kg)", "Product Weight (kg)",
	"Material Cost", "Cost per Piece", "Utilization (%)", "Wastage (%)",
	"Scrap Weight (kg)", "Scrap Savings", "Real Cost",
}

// moneyColumns are 1-based column indexes formatted as #,##0.00.
var moneyColumns = []int{6, 23, 28, 29, 33, 34}

// ExportOrdersXLSX writes the order history to an .xlsx workbook.
func ExportOrdersXLSX(path string, orders []model.OrderRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := buildOrdersWorkbook(orders)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// WriteOrdersXLSX streams the order history workbook to w.
func WriteOrdersXLSX(w io.Writer, orders []model.OrderRecord) error {
	f, err := buildOrdersWorkbook(orders)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func buildOrdersWorkbook(orders []model.OrderRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]interface{}, len(orderColumns))
	for i, c := range orderColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := orderRow(o)
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write order %s: %w", o.ID, err)
		}
	}

	if err := styleOrdersSheet(f, len(orders)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func styleOrdersSheet(f *excelize.File, rows int) error {
	lastCol, err := excelize.ColumnNumberToName(len(orderColumns))
	if err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(ordersSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	if rows > 0 {
		moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
		if err != nil {
			return err
		}
		for _, col := range moneyColumns {
			name, err := excelize.ColumnNumberToName(col)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(ordersSheet, name+"2", fmt.Sprintf("%s%d", name, rows+1), moneyStyle); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(ordersSheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(ordersSheet, "B", lastCol, 14); err != nil {
		return err
	}

	return f.SetPanes(ordersSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func orderRow(o model.OrderRecord) []interface{} {
	form := "rod"
	if o.IsPlate {
		form = "plate"
	}
	return []interface{}{
		o.ID, o.Timestamp.Format("2006-01-02 15:04:05"), o.ProductName, o.Customer, o.DeliveryDate, optional(o.DeliveryUnitPrice),
		o.MaterialKey, form, string(o.Shape), blankZero(o.Diameter), blankZero(o.Width), blankZero(o.Height),
		blankZero(o.PlateThickness), blankZero(o.PlateWidth), blankZero(o.PlateLength),
		blankZero(o.ProductLength), o.Quantity, blankZero(o.CuttingLoss), blankZero(o.HeadCut), blankZero(o.TailCut), blankZero(o.StandardBarLength),
		o.MaterialDensity, o.MaterialPrice,
		blankZeroInt(o.BarsNeeded), blankZeroInt(o.PiecesPerBar), o.StockWeightKg, o.ProductWeightKg,
		o.MaterialCost, o.CostPerPiece, o.UtilizationRate, o.Wastage,
		optional(o.ScrapWeightKg), optional(o.ScrapSavings), optional(o.RealCost),
	}
}

// optional renders a nil pointer as an empty cell.
func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func blankZero(v float64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

func blankZeroInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
