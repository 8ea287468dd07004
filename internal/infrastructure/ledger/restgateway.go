package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"custodia/internal/application/ledger"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

const (
	registerPath = "/users"
	loginPath    = "/users/login"

	defaultRequestTimeout = 15 * time.Second
	retryBackoff          = 500 * time.Millisecond
)

// invokeRequest is the request body for chaincode invocations and queries.
type invokeRequest struct {
	Fcn  string   `json:"fcn"`
	Args []string `json:"args"`
}

// identityRequest is the request body for identity registration and login.
type identityRequest struct {
	Identity string `json:"identity"`
	Org      string `json:"org"`
	Role     string `json:"role,omitempty"`
	Admin    string `json:"admin,omitempty"`
}

// apiResponse is the envelope every gateway endpoint answers with.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token,omitempty"`
	Secret  string          `json:"secret,omitempty"`
	TxID    string          `json:"txid,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// RESTGateway talks to the ledger's REST invocation API. Each call runs
// under the bearer token of an enrolled identity; tokens are cached per
// identity and refreshed on expiry responses.
type RESTGateway struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	logger     logger.Interface

	mu     sync.Mutex
	tokens map[string]string
}

// NewRESTGateway creates a gateway against the configured ledger API.
func NewRESTGateway(cfg *config.LedgerConfig, logger logger.Interface) *RESTGateway {
	timeout := defaultRequestTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &RESTGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: retries,
		logger:     logger,
		tokens:     make(map[string]string),
	}
}

// Invoke submits a state-changing chaincode transaction.
func (g *RESTGateway) Invoke(ctx context.Context, call ledger.Call) (ledger.Receipt, error) {
	path := fmt.Sprintf("/channels/%s/chaincodes/%s/invoke", call.Channel, call.Chaincode)

	resp, err := g.callChaincode(ctx, path, call)
	if err != nil {
		return ledger.Receipt{}, err
	}
	if !resp.Success {
		return ledger.Receipt{}, g.mapFailure(call.Function, resp.Message)
	}
	return ledger.Receipt{TxID: resp.TxID, Payload: []byte(resp.Payload)}, nil
}

// Query evaluates a read-only chaincode function and decodes the record.
func (g *RESTGateway) Query(ctx context.Context, call ledger.Call) (ledger.Record, error) {
	path := fmt.Sprintf("/channels/%s/chaincodes/%s/query", call.Channel, call.Chaincode)

	resp, err := g.callChaincode(ctx, path, call)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, g.mapFailure(call.Function, resp.Message)
	}

	var record ledger.Record
	if err := json.Unmarshal(resp.Result, &record); err != nil {
		g.logger.Warnw("malformed ledger query result",
			"function", call.Function,
			"error", err,
		)
		return nil, errors.NewLedgerUnavailableError("ledger returned a malformed record")
	}
	return record, nil
}

// RegisterIdentity enrolls an identity with an org. Enrolling an identity
// that already exists succeeds and refreshes the cached token.
func (g *RESTGateway) RegisterIdentity(ctx context.Context, identity, org, role string, admin string) (ledger.Credential, error) {
	body := identityRequest{Identity: identity, Org: org, Role: role, Admin: admin}

	resp, status, err := g.post(ctx, registerPath, "", body)
	if err != nil {
		return ledger.Credential{}, err
	}
	if !resp.Success {
		if status == http.StatusConflict || isAlreadyEnrolled(resp.Message) {
			return ledger.Credential{Identity: identity, Org: org}, nil
		}
		return ledger.Credential{}, errors.NewLedgerUnavailableError(
			fmt.Sprintf("identity registration failed: %s", resp.Message))
	}

	if resp.Token != "" {
		g.storeToken(identity, org, resp.Token)
	}
	return ledger.Credential{Identity: identity, Org: org, Secret: resp.Secret}, nil
}

// IsRegistered checks identity enrollment without side effects.
func (g *RESTGateway) IsRegistered(ctx context.Context, identity, org string) (bool, error) {
	body := identityRequest{Identity: identity, Org: org}

	resp, status, err := g.post(ctx, loginPath, "", body)
	if err != nil {
		return false, err
	}
	if !resp.Success {
		if status == http.StatusNotFound || status == http.StatusUnauthorized || isNotFound(resp.Message) {
			return false, nil
		}
		return false, errors.NewLedgerUnavailableError(
			fmt.Sprintf("identity lookup failed: %s", resp.Message))
	}

	if resp.Token != "" {
		g.storeToken(identity, org, resp.Token)
	}
	return true, nil
}

// callChaincode runs one chaincode endpoint call, refreshing the bearer
// token once if the cached one was rejected.
func (g *RESTGateway) callChaincode(ctx context.Context, path string, call ledger.Call) (*apiResponse, error) {
	token, err := g.tokenFor(ctx, call.Identity, call.Org)
	if err != nil {
		return nil, err
	}

	body := invokeRequest{Fcn: call.Function, Args: call.Args}
	resp, status, err := g.post(ctx, path, token, body)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		g.dropToken(call.Identity, call.Org)
		token, err = g.tokenFor(ctx, call.Identity, call.Org)
		if err != nil {
			return nil, err
		}
		resp, _, err = g.post(ctx, path, token, body)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// tokenFor returns the cached bearer token for an identity, logging in to
// obtain one on first use.
func (g *RESTGateway) tokenFor(ctx context.Context, identity, org string) (string, error) {
	g.mu.Lock()
	token, ok := g.tokens[tokenKey(identity, org)]
	g.mu.Unlock()
	if ok {
		return token, nil
	}

	resp, _, err := g.post(ctx, loginPath, "", identityRequest{Identity: identity, Org: org})
	if err != nil {
		return "", err
	}
	if !resp.Success || resp.Token == "" {
		return "", errors.NewLedgerUnavailableError(
			fmt.Sprintf("failed to authenticate ledger identity %s@%s: %s", identity, org, resp.Message))
	}

	g.storeToken(identity, org, resp.Token)
	return resp.Token, nil
}

// post sends one JSON request with bounded retries on transport failures.
func (g *RESTGateway) post(ctx context.Context, path, token string, body interface{}) (*apiResponse, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode ledger request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, errors.NewLedgerUnavailableError("ledger request cancelled")
			case <-time.After(retryBackoff):
			}
		}

		resp, status, err := g.doOnce(ctx, path, token, payload)
		if err != nil {
			lastErr = err
			g.logger.Warnw("ledger request failed",
				"path", path,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}
		if status >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("ledger responded with status %d", status)
			g.logger.Warnw("ledger request failed",
				"path", path,
				"attempt", attempt+1,
				"status", status,
			)
			continue
		}
		return resp, status, nil
	}

	g.logger.Errorw("ledger unreachable after retries", "path", path, "error", lastErr)
	return nil, 0, errors.NewLedgerUnavailableError("ledger is unreachable")
}

func (g *RESTGateway) doOnce(ctx context.Context, path, token string, payload []byte) (*apiResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reach ledger: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read ledger response: %w", err)
	}

	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, 0, fmt.Errorf("failed to decode ledger response: %w", err)
	}
	return &decoded, resp.StatusCode, nil
}

// mapFailure converts a chaincode-level failure message into the error the
// application layer distinguishes on.
func (g *RESTGateway) mapFailure(function, message string) error {
	if isNotFound(message) {
		return errors.NewNotFoundError("ledger record not found")
	}
	return errors.NewLedgerUnavailableError(
		fmt.Sprintf("%s failed on ledger: %s", function, message))
}

func (g *RESTGateway) storeToken(identity, org, token string) {
	g.mu.Lock()
	g.tokens[tokenKey(identity, org)] = token
	g.mu.Unlock()
}

func (g *RESTGateway) dropToken(identity, org string) {
	g.mu.Lock()
	delete(g.tokens, tokenKey(identity, org))
	g.mu.Unlock()
}

func tokenKey(identity, org string) string {
	return identity + "@" + org
}

func isNotFound(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "does not exist") || strings.Contains(lower, "not found")
}

func isAlreadyEnrolled(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "already registered") || strings.Contains(lower, "already enrolled")
}
