package mailer

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMailerRouter(sender Sender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(NewService(sender)).RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_SendEmail(t *testing.T) {
	sender := newFakeSender()
	router := setupMailerRouter(sender)

	w := postJSON(t, router, "/api/send-email", gin.H{
		"to":      "client@example.sn",
		"subject": "Bienvenue",
		"html":    "<p>Bonjour</p>",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "client@example.sn", sender.sent[0].To)
}

func TestHandler_SendEmail_Validation(t *testing.T) {
	router := setupMailerRouter(newFakeSender())

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing to", gin.H{"subject": "x", "html": "y"}},
		{"invalid email", gin.H{"to": "not-an-email", "subject": "x", "html": "y"}},
		{"missing subject", gin.H{"to": "a@example.sn", "html": "y"}},
		{"missing html", gin.H{"to": "a@example.sn", "subject": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/send-email", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_SendEmail_RelayFailure(t *testing.T) {
	sender := newFakeSender()
	sender.failFor["down@example.sn"] = errors.New("relay refused")
	router := setupMailerRouter(sender)

	w := postJSON(t, router, "/api/send-email", gin.H{
		"to":      "down@example.sn",
		"subject": "x",
		"html":    "y",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestHandler_SendBulkEmail(t *testing.T) {
	sender := newFakeSender()
	router := setupMailerRouter(sender)

	w := postJSON(t, router, "/api/send-bulk-email", gin.H{
		"subject": "Appel de fond",
		"html":    "Bonjour {PRENOM}, montant {MONTANT}",
		"recipients": []gin.H{
			{"email": "a@example.sn", "prenom": "Awa", "montant": "100000"},
			{"email": "b@example.sn", "prenom": "Moussa", "montant": "85000"},
		},
		"appelDeFond": true,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Sent    int `json:"sent"`
			Failed  int `json:"failed"`
			Results []struct {
				Email   string `json:"email"`
				Success bool   `json:"success"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Data.Sent)
	assert.Equal(t, 0, body.Data.Failed)
	require.Len(t, body.Data.Results, 2)
}

func TestHandler_SendBulkEmail_PartialFailureStillOK(t *testing.T) {
	sender := newFakeSender()
	sender.failFor["bad@example.sn"] = errors.New("mailbox full")
	router := setupMailerRouter(sender)

	w := postJSON(t, router, "/api/send-bulk-email", gin.H{
		"subject": "Rappel",
		"html":    "x",
		"recipients": []gin.H{
			{"email": "ok@example.sn"},
			{"email": "bad@example.sn"},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Sent   int `json:"sent"`
			Failed int `json:"failed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Sent)
	assert.Equal(t, 1, body.Data.Failed)
}

func TestHandler_SendBulkEmail_NoRecipients(t *testing.T) {
	router := setupMailerRouter(newFakeSender())

	w := postJSON(t, router, "/api/send-bulk-email", gin.H{
		"subject":    "x",
		"html":       "y",
		"recipients": []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
