// Package document generates the purchase-order form artifact issued
// alongside a purchase order.
package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/procure-indent/internal/domain/entity"
)

// POFormGenerator writes purchase-order forms as xlsx workbooks
type POFormGenerator struct {
	outputDir   string
	companyName string
	logger      *zap.Logger
}

// NewPOFormGenerator creates a new PO form generator
func NewPOFormGenerator(outputDir, companyName string, logger *zap.Logger) *POFormGenerator {
	return &POFormGenerator{
		outputDir:   outputDir,
		companyName: companyName,
		logger:      logger,
	}
}

// GeneratePOForm writes the form for an issued purchase order and returns
// the file path
func (g *POFormGenerator) GeneratePOForm(po *entity.PurchaseOrder, indent *entity.Indent, vendor *entity.Vendor) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	g.setCell(f, sheet, "A1", "PURCHASE ORDER")
	g.setCell(f, sheet, "A2", g.companyName)
	g.setCell(f, sheet, "A4", "PO Number")
	g.setCell(f, sheet, "B4", po.PONumber)
	g.setCell(f, sheet, "A5", "Issue Date")
	g.setCell(f, sheet, "B5", po.IssueDate.Format("2006-01-02"))
	g.setCell(f, sheet, "A6", "Indent")
	g.setCell(f, sheet, "B6", indent.Title)
	g.setCell(f, sheet, "A7", "Department")
	g.setCell(f, sheet, "B7", indent.Department)
	g.setCell(f, sheet, "A8", "Vendor")
	g.setCell(f, sheet, "B8", vendor.Name)
	g.setCell(f, sheet, "A9", "Contact")
	g.setCell(f, sheet, "B9", vendor.ContactPerson)

	// Item table
	g.setCell(f, sheet, "A11", "Item")
	g.setCell(f, sheet, "B11", "Quantity")
	g.setCell(f, sheet, "C11", "Unit")
	g.setCell(f, sheet, "D11", "Est. Cost")
	row := 12
	for _, item := range indent.Items {
		g.setCell(f, sheet, fmt.Sprintf("A%d", row), item.Name)
		g.setCell(f, sheet, fmt.Sprintf("B%d", row), item.Quantity)
		g.setCell(f, sheet, fmt.Sprintf("C%d", row), item.Unit)
		g.setCell(f, sheet, fmt.Sprintf("D%d", row), item.EstimatedCost)
		row++
	}

	g.setCell(f, sheet, fmt.Sprintf("A%d", row+1), "Total Amount")
	g.setCell(f, sheet, fmt.Sprintf("D%d", row+1), po.Amount)

	path := filepath.Join(g.outputDir, fmt.Sprintf("%s.xlsx", po.PONumber))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save PO form: %w", err)
	}

	g.logger.Info("PO form written",
		zap.String("po_number", po.PONumber),
		zap.String("path", path))
	return path, nil
}

func (g *POFormGenerator) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		g.logger.Error("Failed to set cell",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
