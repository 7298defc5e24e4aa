package ledger

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what ledger steps need from the scenario context.
type TestContext interface {
	SignedPOST(actor, path string, body any) error
	SignedDELETE(actor, path string) error
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Pubkey(actor string) string
	Hash(label string) string
	Now() int64
}

// Opaque curve coordinates; scenarios run without a signature verifier.
const zkCoordinate = "0101010101010101010101010101010101010101010101010101010101010101"

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ledgerSteps{tc: tc}

	ctx.Step(`^"([^"]*)" initializes the program$`, steps.initializeProgram)
	ctx.Step(`^"([^"]*)" initializes the issuer registry$`, steps.initializeRegistry)
	ctx.Step(`^"([^"]*)" registers issuer "([^"]*)"$`, steps.registerIssuer)
	ctx.Step(`^"([^"]*)" deregisters issuer "([^"]*)"$`, steps.deregisterIssuer)
	ctx.Step(`^"([^"]*)" creates an issuer account named "([^"]*)"$`, steps.createIssuerAccount)
	ctx.Step(`^"([^"]*)" deactivates issuer "([^"]*)"$`, steps.deactivateIssuer)
	ctx.Step(`^"([^"]*)" reactivates issuer "([^"]*)"$`, steps.reactivateIssuer)
	ctx.Step(`^"([^"]*)" issues a credential to "([^"]*)" valid for (\d+) seconds$`, steps.issueFor)
	ctx.Step(`^"([^"]*)" issues a credential to "([^"]*)" issued at (-?\d+) expiring at (-?\d+)$`, steps.issueWindow)
	ctx.Step(`^"([^"]*)" issues a credential to "([^"]*)" carrying a date of birth$`, steps.issueWithDateOfBirth)
	ctx.Step(`^"([^"]*)" revokes the credential of "([^"]*)"$`, steps.revokeOwn)
	ctx.Step(`^"([^"]*)" revokes the credential issued by "([^"]*)" to "([^"]*)"$`, steps.revoke)
	ctx.Step(`^I check the status of the credential issued by "([^"]*)" to "([^"]*)"$`, steps.checkStatus)
	ctx.Step(`^I look up issuer "([^"]*)"$`, steps.lookupIssuer)

	ctx.Step(`^a trusted issuer "([^"]*)" administered by "([^"]*)"$`, steps.trustedIssuer)
}

type ledgerSteps struct {
	tc TestContext
}

func (s *ledgerSteps) initializeProgram(_ context.Context, actor string) error {
	return s.tc.SignedPOST(actor, "/v1/program/initialize", nil)
}

func (s *ledgerSteps) initializeRegistry(_ context.Context, actor string) error {
	return s.tc.SignedPOST(actor, "/v1/registry/initialize", nil)
}

func (s *ledgerSteps) registerIssuer(_ context.Context, actor, issuer string) error {
	return s.tc.SignedPOST(actor, "/v1/registry/issuers", map[string]any{"issuer": s.tc.Pubkey(issuer)})
}

func (s *ledgerSteps) deregisterIssuer(_ context.Context, actor, issuer string) error {
	return s.tc.SignedDELETE(actor, "/v1/registry/issuers/"+s.tc.Pubkey(issuer))
}

func (s *ledgerSteps) createIssuerAccount(_ context.Context, actor, name string) error {
	return s.tc.SignedPOST(actor, "/v1/issuers", map[string]any{
		"name":            name,
		"zk_public_key_x": zkCoordinate,
		"zk_public_key_y": zkCoordinate,
	})
}

func (s *ledgerSteps) deactivateIssuer(_ context.Context, actor, issuer string) error {
	return s.tc.SignedPOST(actor, "/v1/issuers/"+s.tc.Pubkey(issuer)+"/deactivate", nil)
}

func (s *ledgerSteps) reactivateIssuer(_ context.Context, actor, issuer string) error {
	return s.tc.SignedPOST(actor, "/v1/issuers/"+s.tc.Pubkey(issuer)+"/reactivate", nil)
}

func (s *ledgerSteps) issueFor(ctx context.Context, issuer, holder string, seconds int64) error {
	now := s.tc.Now()
	return s.issue(issuer, holder, now, now+seconds, nil)
}

// issueWindow takes offsets relative to the ledger clock.
func (s *ledgerSteps) issueWindow(_ context.Context, issuer, holder string, issuedOffset, expiresOffset int64) error {
	now := s.tc.Now()
	return s.issue(issuer, holder, now+issuedOffset, now+expiresOffset, nil)
}

func (s *ledgerSteps) issueWithDateOfBirth(_ context.Context, issuer, holder string) error {
	now := s.tc.Now()
	dob := int64(631152000)
	return s.issue(issuer, holder, now, now+3600, &dob)
}

func (s *ledgerSteps) issue(issuer, holder string, issuedAt, expiresAt int64, dob *int64) error {
	body := map[string]any{
		"issuer_authority": s.tc.Pubkey(issuer),
		"holder":           s.tc.Pubkey(holder),
		"credential_hash":  s.tc.Hash(issuer + "/" + holder),
		"issued_at":        issuedAt,
		"expires_at":       expiresAt,
		"zk_signature": map[string]string{
			"r8x": zkCoordinate,
			"r8y": zkCoordinate,
			"s":   zkCoordinate,
		},
	}
	if dob != nil {
		body["date_of_birth"] = *dob
	}
	return s.tc.SignedPOST(issuer, "/v1/credentials", body)
}

func (s *ledgerSteps) revokeOwn(ctx context.Context, issuer, holder string) error {
	return s.revoke(ctx, issuer, issuer, holder)
}

func (s *ledgerSteps) revoke(_ context.Context, actor, issuer, holder string) error {
	return s.tc.SignedPOST(actor, "/v1/credentials/revoke", map[string]any{
		"issuer_authority": s.tc.Pubkey(issuer),
		"holder":           s.tc.Pubkey(holder),
	})
}

func (s *ledgerSteps) checkStatus(_ context.Context, issuer, holder string) error {
	return s.tc.GET(fmt.Sprintf("/v1/credentials/%s/%s/status", s.tc.Pubkey(issuer), s.tc.Pubkey(holder)), nil)
}

func (s *ledgerSteps) lookupIssuer(_ context.Context, issuer string) error {
	return s.tc.GET("/v1/issuers/"+s.tc.Pubkey(issuer), nil)
}

// trustedIssuer runs the full bootstrap: program, registry, membership and
// issuer account.
func (s *ledgerSteps) trustedIssuer(ctx context.Context, issuer, admin string) error {
	for _, step := range []struct {
		name string
		run  func() error
		want int
	}{
		{"initialize program", func() error { return s.initializeProgram(ctx, admin) }, http.StatusCreated},
		{"initialize registry", func() error { return s.initializeRegistry(ctx, admin) }, http.StatusCreated},
		{"register issuer", func() error { return s.registerIssuer(ctx, admin, issuer) }, http.StatusOK},
		{"create issuer account", func() error { return s.createIssuerAccount(ctx, issuer, strings.ToUpper(issuer[:1])+issuer[1:]) }, http.StatusCreated},
	} {
		if err := step.run(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		if got := s.tc.GetLastResponseStatus(); got != step.want {
			return fmt.Errorf("%s: expected status %d but got %d: %s", step.name, step.want, got, s.tc.GetLastResponseBody())
		}
	}
	return nil
}
