package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/models"
)

func TestWorkerClientParse(t *testing.T) {
	const secret = "s3cret"

	var gotSubject string
	var gotBody Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad token"}`))
			return
		}
		gotSubject = claims.Subject
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte("```json\n{\"items\":[{\"type\":\"shopping\",\"title\":\"Milk\"}]}\n```"))
	}))
	defer srv.Close()

	ctx := models.WithUser(context.Background(), &models.User{ID: 42})

	t.Run("signs the caller and strips fences", func(t *testing.T) {
		c := NewWorkerClient(srv.URL, secret, 5*time.Second)
		out, err := c.Parse(ctx, Request{Transcript: "buy milk", Today: "2024-05-01"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"items":[{"type":"shopping","title":"Milk"}]}`, string(out))
		assert.Equal(t, "42", gotSubject)
		assert.Equal(t, "buy milk", gotBody.Transcript)
		assert.Equal(t, "2024-05-01", gotBody.Today)
	})

	t.Run("surfaces worker errors", func(t *testing.T) {
		c := NewWorkerClient(srv.URL, "wrong", 5*time.Second)
		_, err := c.Parse(ctx, Request{Transcript: "buy milk"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
		assert.Contains(t, err.Error(), "bad token")
	})

	t.Run("requires a caller", func(t *testing.T) {
		c := NewWorkerClient(srv.URL, secret, 5*time.Second)
		_, err := c.Parse(context.Background(), Request{Transcript: "buy milk"})
		require.Error(t, err)
	})
}

func TestCleanJSON(t *testing.T) {
	_, err := cleanJSON([]byte("  "))
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = cleanJSON([]byte("null"))
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = cleanJSON([]byte("not json"))
	assert.Error(t, err)

	out, err := cleanJSON([]byte(" [1,2] "))
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", string(out))
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(Request{Transcript: "Dentist tomorrow", Today: "2024-05-01"})
	assert.Contains(t, p, "Today is 2024-05-01.")
	assert.True(t, strings.HasSuffix(p, "Dentist tomorrow"))

	p = buildPrompt(Request{Transcript: "Pancakes...", IsRecipe: true})
	assert.Contains(t, p, "extract a recipe")

	p = buildPrompt(Request{Transcript: "...", IsDocument: true, Filename: "school.pdf"})
	assert.Contains(t, p, `"school.pdf"`)
}
