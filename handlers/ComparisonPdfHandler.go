package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GenerateComparisonPDF renders a saved comparison as a printable PDF:
// one table per material with converted USD prices and the best offer
// highlighted.
// @Summary Generate comparison PDF
// @Description Generate a PDF report for a saved quote comparison
// @Tags QuoteComparisons
// @Produce application/pdf
// @Param id path int true "Snapshot ID"
// @Success 200 {file} file "PDF file"
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote_comparison/{id}/pdf [get]
func GenerateComparisonPDF(db *sql.DB) gin.HandlerFunc {
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

		titleCaser := cases.Title(language.Spanish)

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)
		// Latin-1 translation covers the accented Spanish text.
		tr := pdf.UnicodeTranslatorFromDescriptor("")

		pdf.SetFont("Arial", "B", 16)
		pdf.Cell(190, 10, tr("Comparación de Cotizaciones"))
		pdf.Ln(10)

		pdf.SetFont("Arial", "", 10)
		pdf.Cell(190, 6, tr(fmt.Sprintf("Nombre: %s", snap.Name)))
		pdf.Ln(6)
		if snap.ExchangeRate != nil {
			pdf.Cell(190, 6, tr(fmt.Sprintf("Tasa de cambio VES/USD: %.4f", *snap.ExchangeRate)))
			pdf.Ln(6)
		}
		pdf.Cell(190, 6, tr(fmt.Sprintf("Fecha: %s", snap.CreatedAt.Format("02/01/2006"))))
		pdf.Ln(10)

		for _, result := range results {
			pdf.SetFont("Arial", "B", 12)
			pdf.Cell(190, 8, tr(titleCaser.String(result.Material.Name)))
			pdf.Ln(8)

			pdf.SetFont("Arial", "B", 9)
			pdf.SetFillColor(230, 230, 230)
			pdf.CellFormat(55, 7, tr("Proveedor"), "1", 0, "L", true, 0, "")
			pdf.CellFormat(30, 7, tr("Precio"), "1", 0, "C", true, 0, "")
			pdf.CellFormat(20, 7, tr("Moneda"), "1", 0, "C", true, 0, "")
			pdf.CellFormat(25, 7, tr("Tasa"), "1", 0, "C", true, 0, "")
			pdf.CellFormat(35, 7, tr("Precio USD"), "1", 0, "C", true, 0, "")
			pdf.CellFormat(25, 7, tr("Mejor"), "1", 1, "C", true, 0, "")

			pdf.SetFont("Arial", "", 9)
			for _, entry := range result.Entries {
				rate := "-"
				if entry.ExchangeRate != nil {
					rate = fmt.Sprintf("%.4f", *entry.ExchangeRate)
				}
				converted := "-"
				if entry.ConvertedPrice != nil {
					converted = fmt.Sprintf("%.2f", *entry.ConvertedPrice)
				} else if entry.Error != "" {
					converted = entry.Error
				}
				best := ""
				if entry.IsBest {
					best = "X"
					pdf.SetFont("Arial", "B", 9)
				}

				pdf.CellFormat(55, 7, tr(entry.SupplierName), "1", 0, "L", false, 0, "")
				pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", entry.UnitPrice), "1", 0, "R", false, 0, "")
				pdf.CellFormat(20, 7, entry.Currency, "1", 0, "C", false, 0, "")
				pdf.CellFormat(25, 7, rate, "1", 0, "C", false, 0, "")
				pdf.CellFormat(35, 7, tr(converted), "1", 0, "R", false, 0, "")
				pdf.CellFormat(25, 7, best, "1", 1, "C", false, 0, "")

				if entry.IsBest {
					pdf.SetFont("Arial", "", 9)
				}
			}

			pdf.SetFont("Arial", "B", 9)
			if result.BestPrice != nil {
				pdf.CellFormat(190, 7, tr(fmt.Sprintf("Mejor precio: %.2f USD", *result.BestPrice)), "", 1, "R", false, 0, "")
			} else {
				pdf.CellFormat(190, 7, tr("Sin cotizaciones válidas"), "", 1, "R", false, 0, "")
			}
			pdf.Ln(5)
		}

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=comparacion_%d.pdf", snap.ID))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
			return
		}
	}
}
