package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"backend/models"
	"backend/repository"
	"backend/services"

	"github.com/gin-gonic/gin"
)

// CreateQuoteRequest creates a quote request with its material lines in
// one transaction.
// @Summary Create quote request
// @Tags QuoteRequests
// @Accept json
// @Produce json
// @Param body body models.QuoteRequest true "Quote request data"
// @Success 201 {object} models.QuoteRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/quote_request [post]
func CreateQuoteRequest(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var qr models.QuoteRequest
		if err := c.ShouldBindJSON(&qr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if qr.SupplierID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "supplier_id is required"})
			return
		}
		if len(qr.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one item is required"})
			return
		}

		supplierName, err := repository.FetchSupplierName(db, qr.SupplierID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown supplier", "details": err.Error()})
			return
		}

		qr.RequestNumber = repository.GenerateOrderNumber("SC")
		qr.SupplierName = supplierName
		qr.Status = models.QuoteRequestDraft
		qr.CreatedBy = session.UserID
		qr.CreatedAt = time.Now()
		qr.UpdatedAt = qr.CreatedAt

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		err = tx.QueryRow(`
			INSERT INTO quote_request (request_number, supplier_id, supplier_name, status, notes, created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
			qr.RequestNumber, qr.SupplierID, qr.SupplierName, qr.Status,
			qr.Notes, qr.CreatedBy, qr.CreatedAt, qr.UpdatedAt,
		).Scan(&qr.ID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert quote request", "details": err.Error()})
			return
		}

		for i, item := range qr.Items {
			err = tx.QueryRow(`
				INSERT INTO quote_request_item (quote_request_id, material_id, material_name, quantity, unit)
				VALUES ($1,$2,$3,$4,$5) RETURNING id`,
				qr.ID, item.MaterialID, item.MaterialName, item.Quantity, item.Unit,
			).Scan(&qr.Items[i].ID)
			if err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert request item", "details": err.Error()})
				return
			}
			qr.Items[i].QuoteRequestID = qr.ID
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, qr)

		logActivity(models.ActivityLog{
			EventContext:   "QuoteRequest",
			EventName:      "Create",
			Description:    "Create quote request",
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: qr.RequestNumber,
		})
	}
}

// fetchQuoteRequest loads a request with its items.
func fetchQuoteRequest(db *sql.DB, requestID int) (models.QuoteRequest, error) {
	var qr models.QuoteRequest

	err := db.QueryRow(`
		SELECT id, request_number, supplier_id, supplier_name, status, notes, created_by, created_at, updated_at
		FROM quote_request WHERE id=$1`, requestID).
		Scan(&qr.ID, &qr.RequestNumber, &qr.SupplierID, &qr.SupplierName,
			&qr.Status, &qr.Notes, &qr.CreatedBy, &qr.CreatedAt, &qr.UpdatedAt)
	if err != nil {
		return models.QuoteRequest{}, err
	}

	rows, err := db.Query(`
		SELECT id, quote_request_id, material_id, material_name, quantity, unit
		FROM quote_request_item WHERE quote_request_id=$1 ORDER BY id`, requestID)
	if err != nil {
		return models.QuoteRequest{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.QuoteRequestItem
		if err := rows.Scan(&item.ID, &item.QuoteRequestID, &item.MaterialID,
			&item.MaterialName, &item.Quantity, &item.Unit); err != nil {
			return models.QuoteRequest{}, err
		}
		qr.Items = append(qr.Items, item)
	}

	return qr, rows.Err()
}

// GetQuoteRequest fetches one quote request with items.
// @Summary Get quote request by ID
// @Tags QuoteRequests
// @Param id path int true "Request ID"
// @Success 200 {object} models.QuoteRequest
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote_request/{id} [get]
func GetQuoteRequest(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
			return
		}

		qr, err := fetchQuoteRequest(db, requestID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote request not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, qr)
	}
}

// GetAllQuoteRequests lists request headers, newest first.
// @Summary List quote requests
// @Tags QuoteRequests
// @Param status query string false "Status filter"
// @Success 200 {array} models.QuoteRequest
// @Router /api/quote_requests [get]
func GetAllQuoteRequests(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT id, request_number, supplier_id, supplier_name, status, notes, created_by, created_at, updated_at
			FROM quote_request`
		args := []interface{}{}

		if status := c.Query("status"); status != "" {
			query += ` WHERE status = $1`
			args = append(args, status)
		}
		query += ` ORDER BY created_at DESC`

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		requests := []models.QuoteRequest{}
		for rows.Next() {
			var qr models.QuoteRequest
			if err := rows.Scan(&qr.ID, &qr.RequestNumber, &qr.SupplierID, &qr.SupplierName,
				&qr.Status, &qr.Notes, &qr.CreatedBy, &qr.CreatedAt, &qr.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			requests = append(requests, qr)
		}

		c.JSON(http.StatusOK, requests)
	}
}

// SendQuoteRequestEmail mails a draft request to the supplier and marks
// it sent. A request already sent or closed is rejected.
// @Summary Send quote request to supplier
// @Tags QuoteRequests
// @Param id path int true "Request ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/quote_request/{id}/send [post]
func SendQuoteRequestEmail(db *sql.DB, mailer *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		if mailer == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email sending is not configured"})
			return
		}

		requestID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
			return
		}

		qr, err := fetchQuoteRequest(db, requestID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote request not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if qr.Status != models.QuoteRequestDraft {
			c.JSON(http.StatusConflict, gin.H{"error": "Quote request already sent"})
			return
		}

		var supplierEmail string
		err = db.QueryRow(`SELECT email FROM supplier WHERE id=$1`, qr.SupplierID).Scan(&supplierEmail)
		if err != nil || supplierEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Supplier has no email address"})
			return
		}

		if err := mailer.SendQuoteRequest(supplierEmail, qr); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email", "details": err.Error()})
			return
		}

		if _, err := db.Exec(`UPDATE quote_request SET status=$1, updated_at=$2 WHERE id=$3`,
			models.QuoteRequestSent, time.Now(), requestID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Quote request sent to " + supplierEmail})

		logActivity(models.ActivityLog{
			EventContext:   "QuoteRequest",
			EventName:      "Send",
			Description:    "Send quote request to supplier",
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: qr.RequestNumber,
		})
	}
}

// UpdateQuoteRequestStatus closes or reopens a request.
// @Summary Update quote request status
// @Tags QuoteRequests
// @Param id path int true "Request ID"
// @Param body body object true "New status"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote_request/{id}/status [put]
func UpdateQuoteRequestStatus(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")

		var body struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		switch body.Status {
		case models.QuoteRequestDraft, models.QuoteRequestSent, models.QuoteRequestClosed:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
			return
		}

		res, err := db.Exec(`UPDATE quote_request SET status=$1, updated_at=$2 WHERE id=$3`,
			body.Status, time.Now(), requestID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		rowsAffected, _ := res.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote request not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
	}
}

// DeleteQuoteRequest removes a request and its items.
// @Summary Delete quote request
// @Tags QuoteRequests
// @Param id path int true "Request ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote_request/{id} [delete]
func DeleteQuoteRequest(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if _, err := tx.Exec(`DELETE FROM quote_request_item WHERE quote_request_id=$1`, requestID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		res, err := tx.Exec(`DELETE FROM quote_request WHERE id=$1`, requestID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		rowsAffected, _ := res.RowsAffected()
		if rowsAffected == 0 {
			tx.Rollback()
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote request not found"})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Quote request deleted successfully"})
	}
}
