package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"backend/models"
	"backend/repository"
	"backend/services"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// validOrderTransitions guards the purchase order lifecycle. A cancel
// is allowed from any state before received.
var validOrderTransitions = map[string][]string{
	models.OrderDraft:    {models.OrderApproved, models.OrderCancelled},
	models.OrderApproved: {models.OrderReceived, models.OrderCancelled},
}

func orderTransitionAllowed(from, to string) bool {
	for _, next := range validOrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreatePurchaseOrder creates an order with its line items in one
// transaction. The total is computed server side from the items.
// @Summary Create purchase order
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Param body body models.PurchaseOrder true "Order data"
// @Success 201 {object} models.PurchaseOrder
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/purchase_order [post]
func CreatePurchaseOrder(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var order models.PurchaseOrder
		if err := c.ShouldBindJSON(&order); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if order.SupplierID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "supplier_id is required"})
			return
		}
		if len(order.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one item is required"})
			return
		}
		if order.Currency == "" {
			order.Currency = models.CurrencyUSD
		}
		if order.Currency == models.CurrencyVES && (order.ExchangeRate == nil || *order.ExchangeRate <= 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.MsgMissingVESRate})
			return
		}

		supplierName, err := repository.FetchSupplierName(db, order.SupplierID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown supplier", "details": err.Error()})
			return
		}

		order.OrderNumber = repository.GenerateOrderNumber("OC")
		order.SupplierName = supplierName
		order.Status = models.OrderDraft
		order.CreatedBy = session.UserID
		order.CreatedAt = time.Now()
		order.UpdatedAt = order.CreatedAt

		order.TotalAmount = 0
		for _, item := range order.Items {
			order.TotalAmount += item.Quantity * item.UnitPrice
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		err = tx.QueryRow(`
			INSERT INTO purchase_order (order_number, supplier_id, supplier_name, status, currency, exchange_rate, total_amount, notes, created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
			order.OrderNumber, order.SupplierID, order.SupplierName, order.Status,
			order.Currency, order.ExchangeRate, order.TotalAmount, order.Notes,
			order.CreatedBy, order.CreatedAt, order.UpdatedAt,
		).Scan(&order.ID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert purchase order", "details": err.Error()})
			return
		}

		for i, item := range order.Items {
			err = tx.QueryRow(`
				INSERT INTO purchase_order_item (order_id, material_id, material_name, quantity, unit_price)
				VALUES ($1,$2,$3,$4,$5) RETURNING id`,
				order.ID, item.MaterialID, item.MaterialName, item.Quantity, item.UnitPrice,
			).Scan(&order.Items[i].ID)
			if err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert order item", "details": err.Error()})
				return
			}
			order.Items[i].OrderID = order.ID
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, order)

		logActivity(models.ActivityLog{
			EventContext:   "PurchaseOrder",
			EventName:      "Create",
			Description:    "Create purchase order",
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: order.OrderNumber,
		})
	}
}

// fetchPurchaseOrder loads an order with its items.
func fetchPurchaseOrder(db *sql.DB, orderID int) (models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	var exchangeRate sql.NullFloat64

	err := db.QueryRow(`
		SELECT id, order_number, supplier_id, supplier_name, status, currency, exchange_rate, total_amount, notes, created_by, created_at, updated_at
		FROM purchase_order WHERE id=$1`, orderID).
		Scan(&order.ID, &order.OrderNumber, &order.SupplierID, &order.SupplierName,
			&order.Status, &order.Currency, &exchangeRate, &order.TotalAmount,
			&order.Notes, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	if exchangeRate.Valid {
		order.ExchangeRate = &exchangeRate.Float64
	}

	rows, err := db.Query(`
		SELECT id, order_id, material_id, material_name, quantity, unit_price
		FROM purchase_order_item WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MaterialID, &item.MaterialName,
			&item.Quantity, &item.UnitPrice); err != nil {
			return models.PurchaseOrder{}, err
		}
		order.Items = append(order.Items, item)
	}

	return order, rows.Err()
}

// GetPurchaseOrder fetches one order with items.
// @Summary Get purchase order by ID
// @Tags PurchaseOrders
// @Param id path int true "Order ID"
// @Success 200 {object} models.PurchaseOrder
// @Failure 404 {object} models.ErrorResponse
// @Router /api/purchase_order/{id} [get]
func GetPurchaseOrder(db *sql.DB) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, order)
	}
}

// GetAllPurchaseOrders lists order headers, newest first. Optional
// filters: ?status= and ?ids=1,2,3.
// @Summary List purchase orders
// @Tags PurchaseOrders
// @Param status query string false "Status filter"
// @Param ids query string false "Comma-separated ID filter"
// @Success 200 {array} models.PurchaseOrder
// @Router /api/purchase_orders [get]
func GetAllPurchaseOrders(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT id, order_number, supplier_id, supplier_name, status, currency, exchange_rate, total_amount, notes, created_by, created_at, updated_at
			FROM purchase_order`
		conditions := []string{}
		args := []interface{}{}

		if status := c.Query("status"); status != "" {
			args = append(args, status)
			conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
		}
		if idsParam := c.Query("ids"); idsParam != "" {
			ids := []int64{}
			for _, part := range strings.Split(idsParam, ",") {
				id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ids filter"})
					return
				}
				ids = append(ids, id)
			}
			args = append(args, pq.Array(ids))
			conditions = append(conditions, "id = ANY($"+strconv.Itoa(len(args))+")")
		}

		if len(conditions) > 0 {
			query += " WHERE " + strings.Join(conditions, " AND ")
		}
		query += " ORDER BY created_at DESC"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		orders := []models.PurchaseOrder{}
		for rows.Next() {
			var order models.PurchaseOrder
			var exchangeRate sql.NullFloat64
			if err := rows.Scan(&order.ID, &order.OrderNumber, &order.SupplierID, &order.SupplierName,
				&order.Status, &order.Currency, &exchangeRate, &order.TotalAmount,
				&order.Notes, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if exchangeRate.Valid {
				order.ExchangeRate = &exchangeRate.Float64
			}
			orders = append(orders, order)
		}

		c.JSON(http.StatusOK, orders)
	}
}

// UpdatePurchaseOrderStatus moves an order through its lifecycle. On
// approval the order creator gets a push notification.
// @Summary Update purchase order status
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param body body object true "New status"
// @Success 200 {object} models.PurchaseOrder
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/purchase_order/{id}/status [put]
func UpdatePurchaseOrderStatus(db *sql.DB, fcm *services.FCMService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}

		var body struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}

		var currentStatus, orderNumber string
		var createdBy int
		err = db.QueryRow(`SELECT status, order_number, created_by FROM purchase_order WHERE id=$1`, orderID).
			Scan(&currentStatus, &orderNumber, &createdBy)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if !orderTransitionAllowed(currentStatus, body.Status) {
			c.JSON(http.StatusConflict, gin.H{"error": "Invalid status transition", "from": currentStatus, "to": body.Status})
			return
		}

		_, err = db.Exec(`UPDATE purchase_order SET status=$1, updated_at=$2 WHERE id=$3`,
			body.Status, time.Now(), orderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		order, err := fetchPurchaseOrder(db, orderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)

		if body.Status == models.OrderApproved && fcm != nil {
			go func() {
				if err := fcm.NotifyUser(c.Copy(), createdBy,
					"Orden de compra aprobada",
					"La orden "+orderNumber+" fue aprobada.",
					map[string]string{"order_id": strconv.Itoa(orderID)}); err != nil {
					log.Printf("[fcm] order approval notification failed: %v", err)
				}
			}()
		}

		logActivity(models.ActivityLog{
			EventContext:   "PurchaseOrder",
			EventName:      "StatusChange",
			Description:    "Status " + currentStatus + " -> " + body.Status,
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: orderNumber,
		})
	}
}

// DeletePurchaseOrder removes a draft order and its items.
// @Summary Delete purchase order
// @Tags PurchaseOrders
// @Param id path int true "Order ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/purchase_order/{id} [delete]
func DeletePurchaseOrder(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("id")

		var status string
		err := db.QueryRow(`SELECT status FROM purchase_order WHERE id=$1`, orderID).Scan(&status)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if status != models.OrderDraft {
			c.JSON(http.StatusConflict, gin.H{"error": "Only draft orders can be deleted"})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if _, err := tx.Exec(`DELETE FROM purchase_order_item WHERE order_id=$1`, orderID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if _, err := tx.Exec(`DELETE FROM purchase_order WHERE id=$1`, orderID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Purchase order deleted successfully"})
	}
}
