package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"backend/models"
	"backend/utils"

	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CreateUser registers a new user with a bcrypt-hashed password.
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Param body body object true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/create_user [post]
func CreateUser(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		user := models.User{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		err = db.QueryRow(`
			INSERT INTO users (email, password, first_name, last_name, suspended, created_at, updated_at)
			VALUES ($1, $2, $3, $4, false, $5, $6) RETURNING id`,
			user.Email, hashed, user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt,
		).Scan(&user.ID)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

// GetUserFromSession returns the user behind the Authorization header.
// @Summary Get current user
// @Tags Users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /api/get_user [get]
func GetUserFromSession(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, _, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var user models.User
		err = db.QueryRow(`
			SELECT id, email, first_name, last_name, suspended, created_at, updated_at
			FROM users WHERE id=$1`, session.UserID).
			Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName,
				&user.Suspended, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// GetAllUsers lists users for the admin view.
// @Summary List users
// @Tags Users
// @Success 200 {array} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /api/users [get]
func GetAllUsers(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		rows, err := db.Query(`
			SELECT id, email, first_name, last_name, suspended, created_at, updated_at
			FROM users ORDER BY first_name, last_name`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		users := []models.User{}
		for rows.Next() {
			var u models.User
			if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName,
				&u.Suspended, &u.CreatedAt, &u.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			users = append(users, u)
		}

		c.JSON(http.StatusOK, users)
	}
}

// SuspendUser toggles the suspended flag. A suspended user cannot log in.
// @Summary Suspend or reactivate user
// @Tags Users
// @Param id path int true "User ID"
// @Param body body object true "suspended flag"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/user/{id}/suspend [put]
func SuspendUser(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var body struct {
			Suspended *bool `json:"suspended" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "suspended is required"})
			return
		}

		res, err := db.Exec(`UPDATE users SET suspended=$1, updated_at=$2 WHERE id=$3`,
			*body.Suspended, time.Now(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		rowsAffected, _ := res.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User updated"})
	}
}
