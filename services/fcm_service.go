package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

// FCMService pushes procurement event notifications (approved orders,
// received quotes) to registered devices through the FCM HTTP v1 API.
type FCMService struct {
	projectID   string
	db          *sql.DB
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

// ServiceAccountCredentials is the Firebase service account JSON shape.
type ServiceAccountCredentials struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
	TokenURI    string `json:"token_uri"`
}

// NewFCMService builds the push sender from a service account file.
// credentialsPath missing or unreadable is an error the caller may
// downgrade to "notifications disabled".
func NewFCMService(credentialsPath string, db *sql.DB) (*FCMService, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("credentials path is required")
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("error reading credentials file: %v", err)
	}

	var creds ServiceAccountCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("error parsing credentials: %v", err)
	}

	privateKey := []byte(strings.ReplaceAll(creds.PrivateKey, "\\n", "\n"))
	config := &jwt.Config{
		Email:      creds.ClientEmail,
		PrivateKey: privateKey,
		Scopes:     []string{"https://www.googleapis.com/auth/firebase.messaging"},
		TokenURL:   creds.TokenURI,
	}

	return &FCMService{
		projectID:   creds.ProjectID,
		db:          db,
		httpClient:  &http.Client{},
		tokenSource: config.TokenSource(context.Background()),
	}, nil
}

// SendNotification pushes one message to a single device token.
func (f *FCMService) SendNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("FCM token cannot be empty")
	}

	oauthToken, err := f.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("error getting OAuth token: %v", err)
	}

	if data == nil {
		data = map[string]string{}
	}
	message := map[string]interface{}{
		"message": map[string]interface{}{
			"token": token,
			"notification": map[string]string{
				"title": title,
				"body":  body,
			},
			"data": data,
		},
	}

	endpoint := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", f.projectID)
	return f.sendHTTPv1Request(ctx, endpoint, oauthToken.AccessToken, message)
}

// NotifyUser sends the notification to every device token registered
// for a user. Delivery errors are logged per token, not fatal.
func (f *FCMService) NotifyUser(ctx context.Context, userID int, title, body string, data map[string]string) error {
	rows, err := f.db.Query(`SELECT fcm_token FROM device_token WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to query device tokens: %v", err)
	}
	defer rows.Close()

	var sent int
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return fmt.Errorf("failed to scan device token: %v", err)
		}
		if err := f.SendNotification(ctx, token, title, body, data); err != nil {
			log.Printf("[fcm] delivery to user %d failed: %v", userID, err)
			continue
		}
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("no notification delivered for user %d", userID)
	}
	return nil
}

func (f *FCMService) sendHTTPv1Request(ctx context.Context, endpoint, accessToken string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling FCM payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building FCM request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending FCM request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("FCM request failed (HTTP %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
