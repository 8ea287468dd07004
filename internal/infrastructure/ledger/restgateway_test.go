package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "custodia/internal/application/ledger"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

func gatewayFor(t *testing.T, server *httptest.Server, maxRetries int) *RESTGateway {
	t.Helper()
	return NewRESTGateway(&config.LedgerConfig{
		BaseURL:        server.URL,
		TimeoutSeconds: 2,
		MaxRetries:     maxRetries,
	}, logger.NewLogger())
}

func testCall(fn string, args ...string) appledger.Call {
	return appledger.Call{
		Channel:   "residentschannel",
		Chaincode: "residentManagement",
		Function:  fn,
		Args:      args,
		Identity:  "RES-ABCDEFGH23",
		Org:       "Org1",
	}
}

// ledgerStub answers login and chaincode endpoints the way the invocation
// API does.
func ledgerStub(t *testing.T, chaincode http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "test-token"})
	})
	mux.HandleFunc("/channels/residentschannel/chaincodes/residentManagement/invoke", chaincode)
	mux.HandleFunc("/channels/residentschannel/chaincodes/residentManagement/query", chaincode)
	return httptest.NewServer(mux)
}

func TestRESTGateway_InvokeSuccess(t *testing.T) {
	var sawAuth string
	var sawBody invokeRequest

	server := ledgerStub(t, func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sawBody))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"txid":    "tx-123",
			"payload": map[string]any{"id": "RES-ABCDEFGH23"},
		})
	})
	defer server.Close()

	gw := gatewayFor(t, server, 0)
	receipt, err := gw.Invoke(context.Background(), testCall("RegisterResident", "RES-ABCDEFGH23"))
	require.NoError(t, err)

	assert.Equal(t, "tx-123", receipt.TxID)
	assert.Equal(t, "Bearer test-token", sawAuth)
	assert.Equal(t, "RegisterResident", sawBody.Fcn)
	assert.Equal(t, []string{"RES-ABCDEFGH23"}, sawBody.Args)

	parsed, ok := receipt.Parsed()
	require.True(t, ok)
	assert.Equal(t, "RES-ABCDEFGH23", parsed["id"])
}

func TestRESTGateway_QueryDecodesRecord(t *testing.T) {
	server := ledgerStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  map[string]any{"isBlocked": true, "Name": "Jordan"},
		})
	})
	defer server.Close()

	gw := gatewayFor(t, server, 0)
	rec, err := gw.Query(context.Background(), testCall("GetResident", "RES-ABCDEFGH23"))
	require.NoError(t, err)

	blocked, ok := rec.Bool("isBlocked", "IsBlocked")
	assert.True(t, ok)
	assert.True(t, blocked)
	name, ok := rec.Str("name", "Name")
	assert.True(t, ok)
	assert.Equal(t, "Jordan", name)
}

func TestRESTGateway_QueryMalformedResult(t *testing.T) {
	server := ledgerStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  "not an object",
		})
	})
	defer server.Close()

	gw := gatewayFor(t, server, 0)
	_, err := gw.Query(context.Background(), testCall("GetResident", "RES-ABCDEFGH23"))
	require.Error(t, err)
	assert.True(t, errors.IsLedgerUnavailableError(err))
}

func TestRESTGateway_NotFoundMapping(t *testing.T) {
	server := ledgerStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "RES-ZZZZZZZZ99 does not exist",
		})
	})
	defer server.Close()

	gw := gatewayFor(t, server, 0)
	_, err := gw.Query(context.Background(), testCall("GetResident", "RES-ZZZZZZZZ99"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRESTGateway_ChaincodeFailureIsLedgerUnavailable(t *testing.T) {
	server := ledgerStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "endorsement failure",
		})
	})
	defer server.Close()

	gw := gatewayFor(t, server, 0)
	_, err := gw.Invoke(context.Background(), testCall("BlockResident", "RES-ABCDEFGH23"))
	require.Error(t, err)
	assert.True(t, errors.IsLedgerUnavailableError(err))
}

func TestRESTGateway_RetriesServerErrors(t *testing.T) {
	var attempts int32

	server := ledgerStub(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"success": false})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "txid": "tx-retry"})
	})
	defer server.Close()

	gw := gatewayFor(t, server, 1)
	receipt, err := gw.Invoke(context.Background(), testCall("RegisterResident"))
	require.NoError(t, err)
	assert.Equal(t, "tx-retry", receipt.TxID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestRESTGateway_ExhaustedRetriesIsLedgerUnavailable(t *testing.T) {
	server := ledgerStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"success": false})
	})
	defer server.Close()

	gw := gatewayFor(t, server, 1)
	_, err := gw.Invoke(context.Background(), testCall("RegisterResident"))
	require.Error(t, err)
	assert.True(t, errors.IsLedgerUnavailableError(err))
}

func TestRESTGateway_UnreachableHost(t *testing.T) {
	gw := NewRESTGateway(&config.LedgerConfig{
		BaseURL:        "http://127.0.0.1:1",
		TimeoutSeconds: 1,
		MaxRetries:     0,
	}, logger.NewLogger())

	_, err := gw.Invoke(context.Background(), testCall("RegisterResident"))
	require.Error(t, err)
	assert.True(t, errors.IsLedgerUnavailableError(err))
}

func TestRESTGateway_TokenCachedPerIdentity(t *testing.T) {
	var logins int32

	mux := http.NewServeMux()
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&logins, 1)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok"})
	})
	mux.HandleFunc("/channels/residentschannel/chaincodes/residentManagement/query", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "result": map[string]any{}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	gw := gatewayFor(t, server, 0)
	for i := 0; i < 3; i++ {
		_, err := gw.Query(context.Background(), testCall("GetResident", "RES-ABCDEFGH23"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&logins))
}

func TestRESTGateway_RefreshesRejectedToken(t *testing.T) {
	var logins, calls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&logins, 1)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok"})
	})
	mux.HandleFunc("/channels/residentschannel/chaincodes/residentManagement/invoke", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "token expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "txid": "tx-refreshed"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	gw := gatewayFor(t, server, 0)
	receipt, err := gw.Invoke(context.Background(), testCall("RegisterResident"))
	require.NoError(t, err)
	assert.Equal(t, "tx-refreshed", receipt.TxID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&logins))
}

func TestRESTGateway_RegisterIdentity(t *testing.T) {
	t.Run("fresh enrollment", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			var body identityRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "RES-ABCDEFGH23", body.Identity)
			assert.Equal(t, "Org1", body.Org)
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"token":   "tok",
				"secret":  "enrollment-secret",
			})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		gw := gatewayFor(t, server, 0)
		cred, err := gw.RegisterIdentity(context.Background(), "RES-ABCDEFGH23", "Org1", "client", "admin2")
		require.NoError(t, err)
		assert.Equal(t, "enrollment-secret", cred.Secret)
	})

	t.Run("already enrolled is success", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "RES-ABCDEFGH23 is already registered",
			})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		gw := gatewayFor(t, server, 0)
		cred, err := gw.RegisterIdentity(context.Background(), "RES-ABCDEFGH23", "Org1", "client", "admin2")
		require.NoError(t, err)
		assert.Equal(t, "RES-ABCDEFGH23", cred.Identity)
		assert.Empty(t, cred.Secret)
	})
}

func TestRESTGateway_IsRegistered(t *testing.T) {
	t.Run("enrolled", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok"})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		gw := gatewayFor(t, server, 0)
		ok, err := gw.IsRegistered(context.Background(), "RES-ABCDEFGH23", "Org1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown identity", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "user not found",
			})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		gw := gatewayFor(t, server, 0)
		ok, err := gw.IsRegistered(context.Background(), "RES-ZZZZZZZZ99", "Org1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
