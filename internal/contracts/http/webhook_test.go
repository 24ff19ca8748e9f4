package http

import (
	"bytes"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suncrest/suncrest-backend/internal/contracts/domain"
	"github.com/suncrest/suncrest-backend/internal/contracts/repository"
)

func setupWebhook(t *testing.T, secret string) (*gin.Engine, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	r := gin.New()
	NewWebhookHandler(repository.NewContractRepository(db), secret).Register(r.Group("/webhooks"))
	return r, mock, db
}

func contractRows(status domain.Status) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "lead_id", "status", "total_cents", "system_kw",
		"document_url", "signature_request_id", "signed_at", "created_at", "updated_at",
	}).AddRow("contract-1", "tenant-1", "lead-1", status, 1_500_000, 6.4, "", "sig-req-1", nil, now, now)
}

func postCallback(r *gin.Engine, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/esign", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-ESign-Callback-Secret", secret)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignatureCallback(t *testing.T) {
	t.Run("signed callback finalizes the contract", func(t *testing.T) {
		r, mock, db := setupWebhook(t, "hook-secret")
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM contracts`).
			WithArgs("sig-req-1").
			WillReturnRows(contractRows(domain.StatusSent))
		mock.ExpectExec(`UPDATE contracts`).
			WithArgs("tenant-1", "contract-1", domain.StatusSigned).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := postCallback(r, "hook-secret", `{"request_id":"sig-req-1","status":"signed"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("declined callback records the decline", func(t *testing.T) {
		r, mock, db := setupWebhook(t, "hook-secret")
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM contracts`).
			WithArgs("sig-req-1").
			WillReturnRows(contractRows(domain.StatusSent))
		mock.ExpectExec(`UPDATE contracts`).
			WithArgs("tenant-1", "contract-1", domain.StatusDeclined).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := postCallback(r, "hook-secret", `{"request_id":"sig-req-1","status":"declined","reason":"price"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		r, _, db := setupWebhook(t, "hook-secret")
		defer db.Close()

		w := postCallback(r, "wrong", `{"request_id":"sig-req-1","status":"signed"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects unknown statuses", func(t *testing.T) {
		r, _, db := setupWebhook(t, "hook-secret")
		defer db.Close()

		w := postCallback(r, "hook-secret", `{"request_id":"sig-req-1","status":"mystery"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown request id is a 404", func(t *testing.T) {
		r, mock, db := setupWebhook(t, "hook-secret")
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM contracts`).
			WithArgs("sig-req-9").
			WillReturnError(sql.ErrNoRows)

		w := postCallback(r, "hook-secret", `{"request_id":"sig-req-9","status":"signed"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("re-delivered final state is acknowledged without a write", func(t *testing.T) {
		r, mock, db := setupWebhook(t, "hook-secret")
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM contracts`).
			WithArgs("sig-req-1").
			WillReturnRows(contractRows(domain.StatusSigned))

		w := postCallback(r, "hook-secret", `{"request_id":"sig-req-1","status":"signed"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflicting transition is a 409", func(t *testing.T) {
		r, mock, db := setupWebhook(t, "hook-secret")
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM contracts`).
			WithArgs("sig-req-1").
			WillReturnRows(contractRows(domain.StatusSigned))

		w := postCallback(r, "hook-secret", `{"request_id":"sig-req-1","status":"declined"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
