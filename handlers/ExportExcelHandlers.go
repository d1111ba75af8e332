package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportComparisonExcel exports a saved comparison as an xlsx workbook.
// Best offers per material get a highlighted row.
// @Summary Export comparison to Excel
// @Tags QuoteComparisons
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Snapshot ID"
// @Success 200 {file} file "Excel file"
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote_comparison/{id}/excel [get]
func ExportComparisonExcel(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		comparisonID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comparison id"})
			return
		}

		snap, err := fetchQuoteComparison(db, comparisonID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comparison not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		materials := make([]models.MaterialComparison, 0, len(snap.Items))
		for _, item := range snap.Items {
			materials = append(materials, models.MaterialComparison{
				Material: models.Material{ID: item.MaterialID, Name: item.MaterialName},
				Quotes:   item.Quotes,
			})
		}
		results := services.ComputeComparisonResults(materials, snap.ExchangeRate)

		f := excelize.NewFile()
		sheet := "Comparacion"
		f.SetSheetName("Sheet1", sheet)

		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{
				Bold:  true,
				Size:  11,
				Color: "FFFFFF",
			},
			Fill: excelize.Fill{
				Type:    "pattern",
				Color:   []string{"4472C4"},
				Pattern: 1,
			},
			Alignment: &excelize.Alignment{
				Horizontal: "center",
				Vertical:   "center",
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create style", "details": err.Error()})
			return
		}

		bestStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{
				Bold: true,
			},
			Fill: excelize.Fill{
				Type:    "pattern",
				Color:   []string{"C6EFCE"},
				Pattern: 1,
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create style", "details": err.Error()})
			return
		}

		headers := []string{"Material", "Proveedor", "Precio", "Moneda", "Tasa", "Precio USD", "Mejor", "Observación"}
		for col, title := range headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, title)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}

		row := 2
		for _, result := range results {
			for _, entry := range result.Entries {
				f.SetCellValue(sheet, fmt.Sprintf("A%d", row), result.Material.Name)
				f.SetCellValue(sheet, fmt.Sprintf("B%d", row), entry.SupplierName)
				f.SetCellValue(sheet, fmt.Sprintf("C%d", row), entry.UnitPrice)
				f.SetCellValue(sheet, fmt.Sprintf("D%d", row), entry.Currency)
				if entry.ExchangeRate != nil {
					f.SetCellValue(sheet, fmt.Sprintf("E%d", row), *entry.ExchangeRate)
				}
				if entry.ConvertedPrice != nil {
					f.SetCellValue(sheet, fmt.Sprintf("F%d", row), *entry.ConvertedPrice)
				}
				if entry.IsBest {
					f.SetCellValue(sheet, fmt.Sprintf("G%d", row), "X")
					f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), bestStyle)
				}
				if entry.Error != "" {
					f.SetCellValue(sheet, fmt.Sprintf("H%d", row), entry.Error)
				}
				row++
			}
		}

		f.SetColWidth(sheet, "A", "B", 28)
		f.SetColWidth(sheet, "C", "G", 12)
		f.SetColWidth(sheet, "H", "H", 36)

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=comparacion_%d.xlsx", snap.ID))
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file", "details": err.Error()})
			return
		}
	}
}
