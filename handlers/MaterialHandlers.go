package handlers

import (
	"backend/models"
	"backend/utils"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateMaterial creates a catalog material.
// @Summary Create material
// @Tags Materials
// @Accept json
// @Produce json
// @Param body body models.Material true "Material data"
// @Success 201 {object} models.Material
// @Failure 400 {object} models.ErrorResponse
// @Router /api/material [post]
func CreateMaterial(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var material models.Material
		if err := c.ShouldBindJSON(&material); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if material.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Material name is required"})
			return
		}

		material.CreatedAt = time.Now()
		material.UpdatedAt = time.Now()

		query := `INSERT INTO material (name, code, unit, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
		err = db.QueryRow(query, material.Name, material.Code, material.Unit, material.CreatedAt, material.UpdatedAt).Scan(&material.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert material", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, material)

		logActivity(models.ActivityLog{
			EventContext:   "Material",
			EventName:      "Create",
			Description:    "Create material",
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: material.Name,
		})
	}
}

// UpdateMaterial updates a material by ID.
// @Summary Update material
// @Tags Materials
// @Param id path int true "Material ID"
// @Param body body models.Material true "Material data"
// @Success 200 {object} models.Material
// @Failure 404 {object} models.ErrorResponse
// @Router /api/material/{id} [put]
func UpdateMaterial(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var material models.Material
		if err := c.ShouldBindJSON(&material); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		res, err := db.Exec(`UPDATE material SET name=$1, code=$2, unit=$3, updated_at=$4 WHERE id=$5`,
			material.Name, material.Code, material.Unit, time.Now(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		rowsAffected, _ := res.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
			return
		}

		material.ID, _ = strconv.Atoi(id)
		c.JSON(http.StatusOK, material)
	}
}

// GetMaterial fetches one material by ID.
// @Summary Get material by ID
// @Tags Materials
// @Param id path int true "Material ID"
// @Success 200 {object} models.Material
// @Failure 404 {object} models.ErrorResponse
// @Router /api/material/{id} [get]
func GetMaterial(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var m models.Material
		err := db.QueryRow(`SELECT id, name, code, unit, created_at, updated_at FROM material WHERE id=$1`, id).
			Scan(&m.ID, &m.Name, &m.Code, &m.Unit, &m.CreatedAt, &m.UpdatedAt)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, m)
	}
}

// SearchMaterials searches the catalog by name or code.
// @Summary Search materials
// @Tags Materials
// @Param q query string true "Search query"
// @Success 200 {array} models.Material
// @Router /api/materials/search [get]
func SearchMaterials(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")

		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		rows, err := db.QueryContext(ctx, `
			SELECT id, name, code, unit, created_at, updated_at
			FROM material
			WHERE name ILIKE $1 OR code ILIKE $1
			ORDER BY name
			LIMIT 25`, "%"+q+"%")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var materials []models.Material
		for rows.Next() {
			var m models.Material
			if err := rows.Scan(&m.ID, &m.Name, &m.Code, &m.Unit, &m.CreatedAt, &m.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			materials = append(materials, m)
		}

		c.JSON(http.StatusOK, materials)
	}
}

// GetSuppliersByMaterial lists the suppliers linked to a material.
// Clients key the request on the material id so a stale response for a
// superseded material can be discarded.
// @Summary Get suppliers offering a material
// @Tags Materials
// @Param id path int true "Material ID"
// @Success 200 {object} object
// @Router /api/material/{id}/suppliers [get]
func GetSuppliersByMaterial(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		materialID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material id"})
			return
		}

		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		rows, err := db.QueryContext(ctx, `
			SELECT s.id, s.name, s.rif, s.email, s.phone, s.address, s.payment_terms, s.active, s.created_at, s.updated_at, s.created_by
			FROM supplier s
			JOIN supplier_material sm ON sm.supplier_id = s.id
			WHERE sm.material_id = $1 AND s.active
			ORDER BY s.name`, materialID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		suppliers := []models.Supplier{}
		for rows.Next() {
			var s models.Supplier
			if err := rows.Scan(&s.ID, &s.Name, &s.RIF, &s.Email, &s.Phone, &s.Address,
				&s.PaymentTerms, &s.Active, &s.CreatedAt, &s.UpdatedAt, &s.CreatedBy); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			suppliers = append(suppliers, s)
		}

		// material_id echoes back so the client can drop stale responses.
		c.JSON(http.StatusOK, gin.H{"material_id": materialID, "suppliers": suppliers})
	}
}

// LinkSupplierMaterial associates a supplier with a material it offers.
// @Summary Link supplier to material
// @Tags Materials
// @Param id path int true "Material ID"
// @Param supplier_id path int true "Supplier ID"
// @Success 201 {object} models.MessageResponse
// @Router /api/material/{id}/supplier/{supplier_id} [post]
func LinkSupplierMaterial(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		materialID := c.Param("id")
		supplierID := c.Param("supplier_id")

		_, err := db.Exec(`
			INSERT INTO supplier_material (material_id, supplier_id)
			VALUES ($1, $2)
			ON CONFLICT (material_id, supplier_id) DO NOTHING`, materialID, supplierID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Supplier linked to material"})
	}
}

// DeleteMaterial removes a material by ID.
// @Summary Delete material
// @Tags Materials
// @Param id path int true "Material ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/material/{id} [delete]
func DeleteMaterial(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		res, err := db.Exec(`DELETE FROM material WHERE id=$1`, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		rowsAffected, _ := res.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Material deleted successfully"})
	}
}
