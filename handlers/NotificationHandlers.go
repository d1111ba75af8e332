package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterDeviceToken registers an FCM token for the current user so
// procurement events can be pushed to the device.
// @Summary Register FCM device token
// @Description Registers FCM token for the current user. Body: fcm_token. Requires Authorization header.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param body body object true "fcm_token"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/device_token [post]
func RegisterDeviceToken(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, _, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var body struct {
			FCMToken string `json:"fcm_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fcm_token is required"})
			return
		}

		_, err = db.Exec(`
			INSERT INTO device_token (user_id, fcm_token, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (fcm_token) DO UPDATE SET user_id = EXCLUDED.user_id`,
			session.UserID, body.FCMToken, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register token", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Device token registered"})
	}
}

// UnregisterDeviceToken removes an FCM token, typically on logout.
// @Summary Unregister FCM device token
// @Description Removes FCM token. Body: fcm_token. Requires Authorization header.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param body body object true "fcm_token"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/device_token [delete]
func UnregisterDeviceToken(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, _, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var body struct {
			FCMToken string `json:"fcm_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fcm_token is required"})
			return
		}

		if _, err := db.Exec(`DELETE FROM device_token WHERE user_id=$1 AND fcm_token=$2`,
			session.UserID, body.FCMToken); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove token", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Device token removed"})
	}
}
