package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// GeneratePurchaseOrderPDF renders a purchase order as a PDF document
// with a QR code carrying the order number for goods-reception scanning.
// @Summary Generate purchase order PDF
// @Tags PurchaseOrders
// @Produce application/pdf
// @Param id path int true "Order ID"
// @Success 200 {file} file "PDF file"
// @Failure 404 {object} models.ErrorResponse
// @Router /api/purchase_order/{id}/pdf [get]
func GeneratePurchaseOrderPDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}

		order, err := fetchPurchaseOrder(db, orderID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		qrBytes, err := qrcode.Encode(order.OrderNumber, qrcode.Medium, 200)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code", "details": err.Error()})
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)
		tr := pdf.UnicodeTranslatorFromDescriptor("")

		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(150, 10, tr("Orden de Compra"))

		pdf.RegisterImageOptionsReader("order-qr", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrBytes))
		pdf.ImageOptions("order-qr", 165, 10, 30, 30, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.Ln(14)

		pdf.SetFont("Arial", "", 11)
		pdf.Cell(150, 7, tr(fmt.Sprintf("Número: %s", order.OrderNumber)))
		pdf.Ln(7)
		pdf.Cell(150, 7, tr(fmt.Sprintf("Proveedor: %s", order.SupplierName)))
		pdf.Ln(7)
		pdf.Cell(150, 7, tr(fmt.Sprintf("Estado: %s", order.Status)))
		pdf.Ln(7)
		pdf.Cell(150, 7, tr(fmt.Sprintf("Fecha: %s", order.CreatedAt.Format("02/01/2006"))))
		pdf.Ln(7)
		if order.ExchangeRate != nil {
			pdf.Cell(150, 7, tr(fmt.Sprintf("Tasa de cambio: %.4f", *order.ExchangeRate)))
			pdf.Ln(7)
		}
		pdf.Ln(5)

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(80, 8, tr("Material"), "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 8, tr("Cantidad"), "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 8, tr("Precio Unitario"), "1", 0, "C", true, 0, "")
		pdf.CellFormat(45, 8, tr("Subtotal"), "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, item := range order.Items {
			subtotal := item.Quantity * item.UnitPrice
			pdf.CellFormat(80, 8, tr(item.MaterialName), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 8, fmt.Sprintf("%.2f", subtotal), "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(145, 8, tr("Total"), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 8, fmt.Sprintf("%.2f %s", order.TotalAmount, order.Currency), "1", 1, "R", false, 0, "")

		if order.Notes != "" {
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(190, 6, tr("Notas: "+order.Notes), "", "L", false)
		}

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=orden_%s.pdf", order.OrderNumber))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
			return
		}
	}
}
