// tests/integration/main_test.go
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlink/internal/clients"
	"donorlink/internal/donations"
	"donorlink/internal/identity"
	"donorlink/internal/idp"
	"donorlink/internal/ledger"
	"donorlink/internal/simulator"
)

// TestSuite wires the services in-process the way the binaries do, with the
// donations service talking to the ledger service over HTTP.
type TestSuite struct {
	identitySrv  *httptest.Server
	ledgerSrv    *httptest.Server
	donationsSrv *httptest.Server

	identitySvc identity.Service
	ledgerSvc   ledger.Service
}

func setupTestSuite(t *testing.T) *TestSuite {
	t.Helper()

	backend := simulator.New(simulator.WithLatency(0))

	provider := idp.New(idp.WithBackend(backend), idp.WithConfirmationRequired(false))
	_, err := provider.Register("donor@example.com", "SecurePass123!")
	require.NoError(t, err)

	identitySvc := identity.NewManager(provider)
	t.Cleanup(identitySvc.Close)

	identityRouter := chi.NewRouter()
	identityRouter.Route("/api/v1/auth", identity.NewHandler(identitySvc).Routes)
	identitySrv := httptest.NewServer(identityRouter)
	t.Cleanup(identitySrv.Close)

	ledgerSvc := ledger.NewService(backend)
	ledgerRouter := chi.NewRouter()
	ledgerRouter.Route("/api/v1/tokens", ledger.NewHandler(ledgerSvc).Routes)
	ledgerSrv := httptest.NewServer(ledgerRouter)
	t.Cleanup(ledgerSrv.Close)

	ledgerClient := clients.NewLedgerClient(ledgerSrv.URL + "/api/v1/tokens")
	donationsSvc := donations.NewService(backend, ledgerClient)
	donationsRouter := chi.NewRouter()
	donationsRouter.Route("/api/v1", donations.NewHandler(donationsSvc).Routes)
	donationsSrv := httptest.NewServer(donationsRouter)
	t.Cleanup(donationsSrv.Close)

	return &TestSuite{
		identitySrv:  identitySrv,
		ledgerSrv:    ledgerSrv,
		donationsSrv: donationsSrv,
		identitySvc:  identitySvc,
		ledgerSvc:    ledgerSvc,
	}
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestDonationFlow(t *testing.T) {
	ts := setupTestSuite(t)

	// Sign in as the seeded donor.
	resp := postJSON(t, ts.identitySrv.URL+"/api/v1/auth/signin", map[string]string{
		"email":    "donor@example.com",
		"password": "SecurePass123!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state identity.State
	decodeJSON(t, resp, &state)
	require.NotNil(t, state.User)
	assert.Equal(t, "donor@example.com", state.User.Email)

	// Submit a donation; the donations service credits the ledger over HTTP.
	resp = postJSON(t, ts.donationsSrv.URL+"/api/v1/donations", map[string]string{
		"donor_id":  state.User.ID,
		"title":     "Warm Winter Jacket",
		"condition": "good",
		"category":  "clothing",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var donation donations.Donation
	decodeJSON(t, resp, &donation)
	assert.Equal(t, donations.StatusPending, donation.Status)

	assert.Equal(t, ledger.StartingBalance+donations.RewardTokens, ts.ledgerSvc.Balance())

	// Exchange the credited tokens for a reward.
	resp = postJSON(t, ts.ledgerSrv.URL+"/api/v1/tokens/exchanges", map[string]any{
		"reward_id": "2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var exchanged struct {
		Balance  int             `json:"balance"`
		Exchange ledger.Exchange `json:"exchange"`
	}
	decodeJSON(t, resp, &exchanged)
	assert.Equal(t, ledger.StatusCompleted, exchanged.Exchange.Status)
	assert.Equal(t, ledger.StartingBalance+donations.RewardTokens-100, exchanged.Balance)

	// Sign out ends the session.
	resp = postJSON(t, ts.identitySrv.URL+"/api/v1/auth/signout", map[string]string{})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	waitForSignedOut(t, ts.identitySvc)
}

func TestSignInRejectsBadPassword(t *testing.T) {
	ts := setupTestSuite(t)

	resp := postJSON(t, ts.identitySrv.URL+"/api/v1/auth/signin", map[string]string{
		"email":    "donor@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var out struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &out)
	assert.Equal(t, string(identity.KindInvalidCredentials), out.Error)
}

func TestExchangeOverBalanceFails(t *testing.T) {
	ts := setupTestSuite(t)

	// Reward "3" costs 200 against a starting balance of 100.
	resp := postJSON(t, ts.ledgerSrv.URL+"/api/v1/tokens/exchanges", map[string]any{
		"reward_id": "3",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, ledger.StartingBalance, ts.ledgerSvc.Balance())
	assert.Empty(t, ts.ledgerSvc.Exchanges())
}

// waitForSignedOut polls until the sign-out notification has been applied.
func waitForSignedOut(t *testing.T, svc identity.Service) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state := svc.State(); state.User == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, fmt.Sprintf("session still present: %+v", svc.State()))
}
