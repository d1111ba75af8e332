package handlers

import (
	"backend/models"
	"backend/services"
	"backend/utils"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type quoteComparisonRequest struct {
	Name         string                       `json:"name" binding:"required"`
	ExchangeRate *float64                     `json:"exchange_rate"`
	Items        []models.QuoteComparisonItem `json:"items" binding:"required"`
}

// insertComparisonItems writes the per-material rows of a snapshot,
// serializing each material's quotes as JSONB. Position preserves the
// insertion order so a reload renders identically.
func insertComparisonItems(tx *sql.Tx, comparisonID int, items []models.QuoteComparisonItem) error {
	for position, item := range items {
		quotes := item.Quotes
		if quotes == nil {
			quotes = []models.QuoteEntry{}
		}
		quotesJSON, err := json.Marshal(quotes)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO quote_comparison_item (comparison_id, material_id, material_name, position, quotes)
			VALUES ($1, $2, $3, $4, $5)`,
			comparisonID, item.MaterialID, item.MaterialName, position, quotesJSON)
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateQuoteComparison persists a new named comparison snapshot.
// @Summary Create quote comparison snapshot
// @Description Saves the current comparison state under a name. Requires Authorization header.
// @Tags QuoteComparisons
// @Accept json
// @Produce json
// @Param body body object true "Snapshot data"
// @Success 201 {object} models.IDResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/quote_comparison [post]
func CreateQuoteComparison(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session-id header is required"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var req quoteComparisonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrEmptyComparison.Error()})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var comparisonID int
		err = tx.QueryRow(`
			INSERT INTO quote_comparison (name, base_currency, exchange_rate, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			req.Name, models.CurrencyUSD, req.ExchangeRate, session.UserID, time.Now(),
		).Scan(&comparisonID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comparison", "details": err.Error()})
			return
		}

		if err := insertComparisonItems(tx, comparisonID, req.Items); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comparison items", "details": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, models.IDResponse{ID: comparisonID})

		logActivity(models.ActivityLog{
			EventContext:   "QuoteComparison",
			EventName:      "Create",
			Description:    "Save quote comparison",
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: req.Name,
		})
	}
}

// UpdateQuoteComparison overwrites an existing snapshot, keeping its id.
// @Summary Update quote comparison snapshot
// @Tags QuoteComparisons
// @Accept json
// @Produce json
// @Param id path int true "Snapshot ID"
// @Param body body object true "Snapshot data"
// @Success 200 {object} models.IDResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote_comparison/{id} [put]
func UpdateQuoteComparison(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		comparisonID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comparison id"})
			return
		}

		var req quoteComparisonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrEmptyComparison.Error()})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		res, err := tx.Exec(`
			UPDATE quote_comparison SET name=$1, exchange_rate=$2 WHERE id=$3`,
			req.Name, req.ExchangeRate, comparisonID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comparison", "details": err.Error()})
			return
		}
		rowsAffected, _ := res.RowsAffected()
		if rowsAffected == 0 {
			tx.Rollback()
			c.JSON(http.StatusNotFound, gin.H{"error": "Comparison not found"})
			return
		}

		// Replace-all semantics: the snapshot is the whole state.
		if _, err := tx.Exec(`DELETE FROM quote_comparison_item WHERE comparison_id=$1`, comparisonID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace comparison items", "details": err.Error()})
			return
		}
		if err := insertComparisonItems(tx, comparisonID, req.Items); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comparison items", "details": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.IDResponse{ID: comparisonID})

		logActivity(models.ActivityLog{
			EventContext:   "QuoteComparison",
			EventName:      "Update",
			Description:    "Update quote comparison",
			UserName:       userName,
			HostName:       session.HostName,
			IPAddress:      session.IPAddress,
			AffectedEntity: req.Name,
		})
	}
}

// fetchQuoteComparison loads a full snapshot with items in saved order.
func fetchQuoteComparison(db *sql.DB, comparisonID int) (models.QuoteComparison, error) {
	var snap models.QuoteComparison
	var exchangeRate sql.NullFloat64

	err := db.QueryRow(`
		SELECT id, name, base_currency, exchange_rate, created_by, created_at
		FROM quote_comparison WHERE id=$1`, comparisonID).
		Scan(&snap.ID, &snap.Name, &snap.BaseCurrency, &exchangeRate, &snap.CreatedBy, &snap.CreatedAt)
	if err != nil {
		return models.QuoteComparison{}, err
	}
	if exchangeRate.Valid {
		snap.ExchangeRate = &exchangeRate.Float64
	}

	rows, err := db.Query(`
		SELECT material_id, material_name, quotes
		FROM quote_comparison_item
		WHERE comparison_id=$1
		ORDER BY position`, comparisonID)
	if err != nil {
		return models.QuoteComparison{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.QuoteComparisonItem
		var quotesJSON []byte
		if err := rows.Scan(&item.MaterialID, &item.MaterialName, &quotesJSON); err != nil {
			return models.QuoteComparison{}, err
		}
		if err := json.Unmarshal(quotesJSON, &item.Quotes); err != nil {
			return models.QuoteComparison{}, err
		}
		snap.Items = append(snap.Items, item)
	}

	return snap, rows.Err()
}

// GetQuoteComparisonByID returns a full snapshot for reloading into the
// comparison view.
// @Summary Get quote comparison snapshot
// @Tags QuoteComparisons
// @Param id path int true "Snapshot ID"
// @Success 200 {object} models.QuoteComparison
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote_comparison/{id} [get]
func GetQuoteComparisonByID(db *sql.DB) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, snap)
	}
}

// GetAllQuoteComparisons lists snapshot headers, newest first.
// @Summary List quote comparison snapshots
// @Tags QuoteComparisons
// @Success 200 {array} models.QuoteComparison
// @Router /api/quote_comparisons [get]
func GetAllQuoteComparisons(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		rows, err := db.QueryContext(ctx, `
			SELECT id, name, base_currency, exchange_rate, created_by, created_at
			FROM quote_comparison
			ORDER BY created_at DESC`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		comparisons := []models.QuoteComparison{}
		for rows.Next() {
			var snap models.QuoteComparison
			var exchangeRate sql.NullFloat64
			if err := rows.Scan(&snap.ID, &snap.Name, &snap.BaseCurrency, &exchangeRate,
				&snap.CreatedBy, &snap.CreatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if exchangeRate.Valid {
				snap.ExchangeRate = &exchangeRate.Float64
			}
			comparisons = append(comparisons, snap)
		}

		c.JSON(http.StatusOK, comparisons)
	}
}

// DeleteQuoteComparison removes a snapshot and its items.
// @Summary Delete quote comparison snapshot
// @Tags QuoteComparisons
// @Param id path int true "Snapshot ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote_comparison/{id} [delete]
func DeleteQuoteComparison(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		comparisonID := c.Param("id")

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if _, err := tx.Exec(`DELETE FROM quote_comparison_item WHERE comparison_id=$1`, comparisonID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		res, err := tx.Exec(`DELETE FROM quote_comparison WHERE id=$1`, comparisonID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		rowsAffected, _ := res.RowsAffected()
		if rowsAffected == 0 {
			tx.Rollback()
			c.JSON(http.StatusNotFound, gin.H{"error": "Comparison not found"})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Comparison deleted successfully"})
	}
}

// ComputeQuoteComparison normalizes the submitted comparison state and
// returns per-entry validity, converted USD prices and best price per
// material. Stateless: nothing is persisted.
// @Summary Compute comparison results
// @Tags QuoteComparisons
// @Accept json
// @Produce json
// @Param body body models.ComputeComparisonRequest true "Comparison state"
// @Success 200 {array} models.ComparisonResult
// @Failure 400 {object} models.ErrorResponse
// @Router /api/quote_comparison/compute [post]
func ComputeQuoteComparison() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ComputeComparisonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		results := services.ComputeComparisonResults(req.Materials, req.ExchangeRate)
		c.JSON(http.StatusOK, results)
	}
}
