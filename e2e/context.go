package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	"credledger/pkg/platform/middleware/auth"
	"credledger/pkg/testutil"
)

// TestContext holds state between steps of one scenario. Every scenario gets
// its own in-process ledger, so scenarios never see each other's records.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	server *httptest.Server
	clock  atomic.Int64
	actors map[string]testutil.Identity
}

func NewTestContext() *TestContext {
	tc := &TestContext{actors: make(map[string]testutil.Identity)}
	tc.clock.Store(time.Now().Unix())
	tc.server = httptest.NewServer(newLedgerServer(func() time.Time {
		return time.Unix(tc.clock.Load(), 0)
	}))
	tc.BaseURL = tc.server.URL
	tc.HTTPClient = tc.server.Client()
	tc.HTTPClient.Timeout = 10 * time.Second
	return tc
}

func (tc *TestContext) Close() {
	tc.server.Close()
}

// Actor returns the keypair for a named participant, creating it on first use.
func (tc *TestContext) Actor(name string) testutil.Identity {
	id, ok := tc.actors[name]
	if !ok {
		id = testutil.NewIdentity("e2e:" + name)
		tc.actors[name] = id
	}
	return id
}

func (tc *TestContext) Pubkey(name string) string {
	return tc.Actor(name).Pubkey.String()
}

// SetClock pins the ledger clock to unix seconds.
func (tc *TestContext) SetClock(unix int64) {
	tc.clock.Store(unix)
}

func (tc *TestContext) AdvanceClock(seconds int64) {
	tc.clock.Add(seconds)
}

func (tc *TestContext) Now() int64 {
	return tc.clock.Load()
}

// SignedPOST sends body as actor. A nil body sends no payload.
func (tc *TestContext) SignedPOST(actor, path string, body any) error {
	return tc.signed(http.MethodPost, actor, path, body)
}

func (tc *TestContext) SignedDELETE(actor, path string) error {
	return tc.signed(http.MethodDelete, actor, path, nil)
}

func (tc *TestContext) signed(method, actor, path string, body any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	token, err := auth.SignRequest(tc.Actor(actor).PrivateKey, data, time.Now(), time.Minute)
	if err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}
	return tc.do(method, path, data, map[string]string{"Authorization": "Bearer " + token})
}

// POST sends body without a caller signature.
func (tc *TestContext) POST(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.do(http.MethodPost, path, data, nil)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body []byte, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a top-level field from the JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

func (tc *TestContext) ResponseContains(text string) bool {
	return strings.Contains(string(tc.LastResponseBody), text)
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

// Hash returns a hex credential hash derived from label.
func (tc *TestContext) Hash(label string) string {
	return testutil.Hash32(label).String()
}
