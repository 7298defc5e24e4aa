package e2e

import (
	"github.com/cucumber/godog"

	"credledger/e2e/steps/common"
	"credledger/e2e/steps/ledger"
)

// RegisterSteps registers all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	ledger.RegisterSteps(ctx, tc)
}
