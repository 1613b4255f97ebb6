// internal/api/api_integration_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "custody-wallet/internal"
	"custody-wallet/internal/config"
	"custody-wallet/internal/domain"
	"custody-wallet/pkg/db"
)

// testApp is the global application instance for testing.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

// TestMain is the special entry point for Go tests, executed once before all tests.
func TestMain(m *testing.M) {
	// 1. Initialize the application against an in-memory SQLite database.
	testApp = app.NewApplication()
	cfg := &config.AppConfig{
		ServerPort:   "8080",
		LogLevel:     "error",
		DB:           db.Config{Driver: db.DriverSQLite, Path: ":memory:"},
		AutoMigrate:  true,
		Threshold:    decimal.NewFromInt(1000000),
		JWTSecret:    "integration-secret",
		CORSOrigins:  []string{"http://localhost:3000"},
		SummaryStore: config.SummaryStoreSQL,
	}
	if err := testApp.InitializeWithConfig(context.Background(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1) // Exit tests if initialization fails
	}

	// 2. Start an httptest server to test the HTTP handling layer.
	testServer = httptest.NewServer(testApp.HTTPHandler)

	// 3. Run all tests.
	code := m.Run()

	// 4. Shut down application resources after tests.
	testServer.Close()
	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

// clearDatabase empties all tables so each test starts from a clean state.
func clearDatabase(t *testing.T) {
	// Order is important due to foreign key dependencies.
	tables := []string{"transactions", "wallets", "payments", "payment_summaries"}
	for _, table := range tables {
		_, err := testApp.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
		require.NoError(t, err, "Failed to clear table %s", table)
	}
}

// createTestWallet inserts a wallet with an initial balance directly through the repository.
func createTestWallet(t *testing.T, userID, currency string, initialBalance decimal.Decimal) string {
	wallet := domain.NewWallet(userID, currency)
	wallet.Balance = initialBalance
	err := testApp.WalletRepository.CreateWallet(context.Background(), testApp.DB, wallet)
	require.NoError(t, err)
	return wallet.ID
}

func tokenFor(t *testing.T, userID string, isAdmin bool) string {
	token, err := testApp.Authenticator.IssueToken(userID, isAdmin, time.Hour)
	require.NoError(t, err)
	return token
}

// makeRequest sends an HTTP request to the test server and returns the response and its body.
func makeRequest(t *testing.T, method, path, token string, body io.Reader) (*http.Response, string) {
	req, err := http.NewRequest(method, testServer.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(respBody)
}

func decodeMap(t *testing.T, body string) map[string]interface{} {
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &m), body)
	return m
}

func transferBody(receiverWalletID string, amount int64) io.Reader {
	return strings.NewReader(fmt.Sprintf(`{"receiver_wallet_id": %q, "amount": "%d"}`, receiverWalletID, amount))
}

func TestHealthAndAuthentication(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/health", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)

	resp, body = makeRequest(t, "GET", "/transactions", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "UNAUTHENTICATED")

	resp, _ = makeRequest(t, "GET", "/transactions", "not-a-jwt", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestTransferIntegration tests the transfer endpoint below and above the threshold.
func TestTransferIntegration(t *testing.T) {
	clearDatabase(t)
	alice := tokenFor(t, "user-1", false)
	admin := tokenFor(t, "admin-1", true)
	walletA := createTestWallet(t, "user-1", "NGN", decimal.NewFromInt(5000000))
	walletB := createTestWallet(t, "user-2", "NGN", decimal.Zero)
	walletUSD := createTestWallet(t, "user-3", "USD", decimal.Zero)

	t.Run("SettledTransfer", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/wallets/"+walletA+"/transfers", alice, transferBody(walletB, 500000))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode, body)
		responseMap := decodeMap(t, body)
		balance, err := decimal.NewFromString(responseMap["balance"].(string))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(4500000).Equal(balance))
		transaction := responseMap["transaction"].(map[string]interface{})
		assert.Equal(t, "APPROVED", transaction["status"])
	})

	var pendingID string
	t.Run("PendingTransfer", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/wallets/"+walletA+"/transfers", alice, transferBody(walletB, 2000000))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusAccepted, resp.StatusCode, body)
		responseMap := decodeMap(t, body)
		transaction := responseMap["transaction"].(map[string]interface{})
		assert.Equal(t, "PENDING", transaction["status"])
		pendingID = transaction["id"].(string)

		balance, err := decimal.NewFromString(responseMap["balance"].(string))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(4500000).Equal(balance))
	})

	t.Run("UserCannotApprove", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/admin/transactions/"+pendingID+"/approve", alice, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("AdminApproves", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/admin/transactions/"+pendingID+"/approve", admin, nil)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, body)
		responseMap := decodeMap(t, body)
		assert.Equal(t, "APPROVED", responseMap["status"])
		assert.Equal(t, "admin-1", responseMap["approved_by"])

		respWallet, bodyWallet := makeRequest(t, "GET", "/wallets/"+walletA, alice, nil)
		defer respWallet.Body.Close()
		assert.Equal(t, http.StatusOK, respWallet.StatusCode)
		balance, err := decimal.NewFromString(decodeMap(t, bodyWallet)["balance"].(string))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2500000).Equal(balance))

		respAgain, bodyAgain := makeRequest(t, "POST", "/admin/transactions/"+pendingID+"/approve", admin, nil)
		defer respAgain.Body.Close()
		assert.Equal(t, http.StatusConflict, respAgain.StatusCode)
		assert.Contains(t, bodyAgain, "ALREADY_PROCESSED_OR_NOT_FOUND")
	})

	t.Run("AdminCannotTransfer", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/wallets/"+walletA+"/transfers", admin, transferBody(walletB, 10))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Contains(t, body, "FORBIDDEN")
	})

	t.Run("CurrencyMismatch", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/wallets/"+walletA+"/transfers", alice, transferBody(walletUSD, 10))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "CURRENCY_MISMATCH")
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/wallets/"+walletA+"/transfers", alice, transferBody(walletB, 90000000))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
		assert.Contains(t, body, "insufficient funds")
	})

	t.Run("NotOwner", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/wallets/"+walletB+"/transfers", alice, transferBody(walletA, 10))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/wallets/"+walletA+"/transfers", alice, strings.NewReader(`{"amount": `))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

// TestTransactionListing tests the paginated listing endpoints.
func TestTransactionListing(t *testing.T) {
	clearDatabase(t)
	alice := tokenFor(t, "user-1", false)
	admin := tokenFor(t, "admin-1", true)
	walletA := createTestWallet(t, "user-1", "NGN", decimal.NewFromInt(5000000))
	walletB := createTestWallet(t, "user-2", "NGN", decimal.Zero)

	for _, amount := range []int64{100, 200, 3000000} {
		resp, body := makeRequest(t, "POST", "/wallets/"+walletA+"/transfers", alice, transferBody(walletB, amount))
		resp.Body.Close()
		require.Less(t, resp.StatusCode, 300, body)
	}

	resp, body := makeRequest(t, "GET", "/transactions?status=APPROVED&limit=1", alice, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeMap(t, body)
	assert.Len(t, page["data"].([]interface{}), 1)
	assert.Equal(t, float64(2), page["total_count"])
	assert.Equal(t, float64(1), page["limit"])

	resp, body = makeRequest(t, "GET", "/admin/transactions?status=PENDING", admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decodeMap(t, body)["total_count"])

	resp, _ = makeRequest(t, "GET", "/transactions?status=REVERSED", alice, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = makeRequest(t, "GET", "/admin/transactions", alice, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// TestPaymentSummaryIntegration tests on-demand summary generation and reads.
func TestPaymentSummaryIntegration(t *testing.T) {
	clearDatabase(t)
	admin := tokenFor(t, "admin-1", true)
	alice := tokenFor(t, "user-1", false)

	ref := "PSK-9"
	for i, gatewayRef := range []*string{&ref, nil, &ref} {
		_, err := testApp.DB.Exec(testApp.DB.Rebind(`INSERT INTO payments (id, user_id, amount, currency, gateway_reference, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
			fmt.Sprintf("p-%d", i), "user-1", decimal.NewFromInt(100), "NGN", gatewayRef, time.Date(2026, 5, 10+i, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	resp, body := makeRequest(t, "POST", "/admin/payment-summaries", admin, strings.NewReader(`{"month": 5, "year": 2026}`))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)
	summary := decodeMap(t, body)
	assert.Equal(t, float64(3), summary["total_payments"])
	assert.Equal(t, float64(2), summary["successful_payments"])
	assert.Equal(t, float64(1), summary["pending_payments"])

	resp, body = makeRequest(t, "POST", "/admin/payment-summaries", admin, strings.NewReader(`{"month": 13, "year": 2026}`))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

	resp, body = makeRequest(t, "GET", "/admin/payment-summaries", admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeMap(t, body)["data"].([]interface{}), 1)

	resp, body = makeRequest(t, "GET", "/admin/payments/p-1", admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "p-1", decodeMap(t, body)["id"])

	resp, _ = makeRequest(t, "GET", "/admin/payments", alice, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
