package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Kerhoff/hearth/internal/models"
)

// WorkerClient calls the household AI worker over HTTP. Each request carries
// a short-lived HS256 token whose subject is the calling user.
type WorkerClient struct {
	client *resty.Client
	secret []byte
	now    func() time.Time
}

// NewWorkerClient creates a new AI worker client
func NewWorkerClient(baseURL, secret string, timeout time.Duration) *WorkerClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &WorkerClient{client: c, secret: []byte(secret), now: time.Now}
}

// Parse implements Client.
func (w *WorkerClient) Parse(ctx context.Context, req Request) (json.RawMessage, error) {
	user := models.UserFromContext(ctx)
	if user == nil {
		return nil, fmt.Errorf("authentication required for AI features")
	}

	token, err := w.token(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign worker token: %w", err)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(&req).
		Post("/")
	if err != nil {
		return nil, fmt.Errorf("failed to call AI worker: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(resp.Body(), &e) != nil || e.Error == "" {
			e.Error = "worker request failed"
		}
		return nil, fmt.Errorf("AI worker status %d: %s", resp.StatusCode(), e.Error)
	}

	return cleanJSON(resp.Body())
}

func (w *WorkerClient) token(user *models.User) (string, error) {
	now := w.now()
	claims := jwt.RegisteredClaims{
		Issuer:    "hearth",
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(w.secret)
}
