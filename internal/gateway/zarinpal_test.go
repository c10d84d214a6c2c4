package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pg/v4/payment/request.json", r.URL.Path)

		var body requestPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "merchant-1", body.MerchantID)
		assert.Equal(t, int64(2_725_000), body.Amount)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 100, "message": "Success", "authority": "A0000012345"},
		})
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("merchant-1", srv.URL)
	authority, payURL, err := client.Request(context.Background(), 2_725_000, "https://rabik.ir/cb", "پرداخت فاکتور")

	require.NoError(t, err)
	assert.Equal(t, "A0000012345", authority)
	assert.Equal(t, srv.URL+"/pg/StartPay/A0000012345", payURL)
}

func TestRequest_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": -9, "message": "Validation error"},
		})
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("merchant-1", srv.URL)
	_, _, err := client.Request(context.Background(), 1000, "https://rabik.ir/cb", "x")

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, -9, gwErr.Code)
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pg/v4/payment/verify.json", r.URL.Path)

		var body verifyPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "A0000012345", body.Authority)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 100, "message": "Verified", "ref_id": 123456789},
		})
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("merchant-1", srv.URL)
	refID, err := client.Verify(context.Background(), "A0000012345", 2_725_000)

	require.NoError(t, err)
	assert.Equal(t, int64(123456789), refID)
}

func TestVerify_AlreadyVerifiedIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 101, "message": "Already verified", "ref_id": 42},
		})
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("merchant-1", srv.URL)
	refID, err := client.Verify(context.Background(), "A0000012345", 1000)

	require.NoError(t, err)
	assert.Equal(t, int64(42), refID)
}

func TestVerify_FailedPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": -51, "message": "Session is not valid"},
		})
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("merchant-1", srv.URL)
	_, err := client.Verify(context.Background(), "A0000012345", 1000)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, -51, gwErr.Code)
}
