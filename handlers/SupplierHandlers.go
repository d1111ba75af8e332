package handlers

import (
	"backend/models"
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateSupplier creates a new supplier.
// @Summary Create supplier
// @Description Creates a new supplier. Requires Authorization header.
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param body body models.Supplier true "Supplier data"
// @Success 201 {object} models.Supplier
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/supplier [post]
func CreateSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var supplier models.Supplier
		if err = c.ShouldBindJSON(&supplier); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if supplier.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Supplier name is required"})
			return
		}

		supplier.CreatedAt = time.Now()
		supplier.UpdatedAt = time.Now()
		supplier.CreatedBy = session.UserID
		supplier.Active = true

		query := `
			INSERT INTO supplier (name, rif, email, phone, address, payment_terms, active, created_at, updated_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`
		err = db.QueryRow(query,
			supplier.Name,
			supplier.RIF,
			supplier.Email,
			supplier.Phone,
			supplier.Address,
			supplier.PaymentTerms,
			supplier.Active,
			supplier.CreatedAt,
			supplier.UpdatedAt,
			supplier.CreatedBy,
		).Scan(&supplier.ID)
		if err != nil {
			log.Printf("Error inserting supplier: %v\n", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert supplier", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, supplier)

		logActivity(models.ActivityLog{
			EventContext:   "Supplier",
			EventName:      "Create",
			Description:    "Create supplier",
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: supplier.Name,
		})
	}
}

// UpdateSupplier updates a supplier by ID.
// @Summary Update supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param body body models.Supplier true "Supplier data"
// @Success 200 {object} models.Supplier
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/supplier/{id} [put]
func UpdateSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		id := c.Param("id")
		var supplier models.Supplier
		if err := c.ShouldBindJSON(&supplier); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		query := `
			UPDATE supplier
			SET name=$1, rif=$2, email=$3, phone=$4, address=$5, payment_terms=$6, active=$7, updated_at=$8
			WHERE id=$9
		`
		res, err := db.Exec(query,
			supplier.Name, supplier.RIF, supplier.Email, supplier.Phone,
			supplier.Address, supplier.PaymentTerms, supplier.Active, time.Now(), id,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update supplier", "details": err.Error()})
			return
		}

		rowsAffected, _ := res.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}

		supplier.ID, _ = strconv.Atoi(id)
		c.JSON(http.StatusOK, supplier)

		logActivity(models.ActivityLog{
			EventContext:   "Supplier",
			EventName:      "Update",
			Description:    "Update supplier",
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: supplier.Name,
		})
	}
}

// GetSupplier fetches one supplier by ID.
// @Summary Get supplier by ID
// @Tags Suppliers
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.Supplier
// @Failure 404 {object} models.ErrorResponse
// @Router /api/supplier/{id} [get]
func GetSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var supplier models.Supplier
		err := db.QueryRow(`
			SELECT id, name, rif, email, phone, address, payment_terms, active, created_at, updated_at, created_by
			FROM supplier WHERE id=$1`, id).
			Scan(&supplier.ID, &supplier.Name, &supplier.RIF, &supplier.Email, &supplier.Phone,
				&supplier.Address, &supplier.PaymentTerms, &supplier.Active,
				&supplier.CreatedAt, &supplier.UpdatedAt, &supplier.CreatedBy)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, supplier)
	}
}

// GetAllSuppliers lists suppliers, optionally filtered by name.
// @Summary List suppliers
// @Tags Suppliers
// @Param search query string false "Name filter"
// @Success 200 {array} models.Supplier
// @Router /api/suppliers [get]
func GetAllSuppliers(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT id, name, rif, email, phone, address, payment_terms, active, created_at, updated_at, created_by
			FROM supplier`
		args := []interface{}{}

		if search := c.Query("search"); search != "" {
			query += ` WHERE name ILIKE $1 OR rif ILIKE $1`
			args = append(args, "%"+search+"%")
		}
		query += ` ORDER BY name`

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var suppliers []models.Supplier
		for rows.Next() {
			var s models.Supplier
			if err := rows.Scan(&s.ID, &s.Name, &s.RIF, &s.Email, &s.Phone, &s.Address,
				&s.PaymentTerms, &s.Active, &s.CreatedAt, &s.UpdatedAt, &s.CreatedBy); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			suppliers = append(suppliers, s)
		}

		c.JSON(http.StatusOK, suppliers)
	}
}

// DeleteSupplier removes a supplier by ID.
// @Summary Delete supplier
// @Tags Suppliers
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/supplier/{id} [delete]
func DeleteSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		id := c.Param("id")
		res, err := db.Exec(`DELETE FROM supplier WHERE id=$1`, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		rowsAffected, _ := res.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})

		logActivity(models.ActivityLog{
			EventContext:   "Supplier",
			EventName:      "Delete",
			Description:    "Delete supplier",
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: id,
		})
	}
}
