package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what generic steps need from the scenario context.
type TestContext interface {
	GET(path string, headers map[string]string) error
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	ResponseContains(text string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	SetClock(unix int64)
	AdvanceClock(seconds int64)
}

// RegisterSteps registers request, response and clock steps shared by features.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the ledger clock reads (\d+)$`, steps.clockReads)
	ctx.Step(`^(\d+) seconds pass$`, steps.secondsPass)

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^an unsigned POST to "([^"]*)"$`, steps.unsignedPost)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the program error should be "([^"]*)"$`, steps.programErrorShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) clockReads(_ context.Context, unix int64) error {
	s.tc.SetClock(unix)
	return nil
}

func (s *commonSteps) secondsPass(_ context.Context, seconds int64) error {
	s.tc.AdvanceClock(seconds)
	return nil
}

func (s *commonSteps) get(_ context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) unsignedPost(_ context.Context, path string) error {
	return s.tc.POST(path, map[string]any{})
}

func (s *commonSteps) responseStatusShouldBe(_ context.Context, expected int) error {
	if actual := s.tc.GetLastResponseStatus(); actual != expected {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expected, actual, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) responseShouldContain(_ context.Context, text string) error {
	if !s.tc.ResponseContains(text) {
		return fmt.Errorf("response does not contain %q\nResponse: %s", text, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(_ context.Context, field, expected string) error {
	actual, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(actual) != expected {
		return fmt.Errorf("field %s: expected %s but got %v", field, expected, actual)
	}
	return nil
}

func (s *commonSteps) programErrorShouldBe(_ context.Context, name string) error {
	var body struct {
		ProgramError *struct {
			Code uint32 `json:"code"`
			Name string `json:"name"`
		} `json:"program_error"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if body.ProgramError == nil {
		return fmt.Errorf("no program error in response: %s", strings.TrimSpace(string(s.tc.GetLastResponseBody())))
	}
	if body.ProgramError.Name != name {
		return fmt.Errorf("expected program error %s but got %s (%d)", name, body.ProgramError.Name, body.ProgramError.Code)
	}
	return nil
}
