package esign

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateSignatureRequest(t *testing.T) {
	t.Run("returns the provider request id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/signature-requests", r.URL.Path)
			assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "contract-1", body["contract_id"])

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"request":{"id":"sig-req-1","status":"pending"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "key-123")
		id, err := client.CreateSignatureRequest(SignatureRequest{
			ContractID:  "contract-1",
			DocumentURL: "https://docs.example.com/contract-1.pdf",
			SignerEmail: "jordan@example.com",
			SignerName:  "Jordan Silva",
		})
		require.NoError(t, err)
		assert.Equal(t, "sig-req-1", id)
	})

	t.Run("non-201 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"missing signer"}`, http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "key-123")
		_, err := client.CreateSignatureRequest(SignatureRequest{ContractID: "contract-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "422")
	})
}

func TestClient_CancelSignatureRequest(t *testing.T) {
	t.Run("posts the cancel action", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/signature-requests/sig-req-1:cancel", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "key-123")
		require.NoError(t, client.CancelSignatureRequest("sig-req-1"))
	})

	t.Run("provider failure surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusConflict)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "key-123")
		require.Error(t, client.CancelSignatureRequest("sig-req-1"))
	})
}
