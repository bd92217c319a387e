package domain

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
)

type wizardStepsWorld struct {
	hasSource  bool
	configured bool
	states     StepStates
}

func (w *wizardStepsWorld) noSourceCreated() error {
	w.hasSource = false
	return nil
}

func (w *wizardStepsWorld) sourceCreated() error {
	w.hasSource = true
	return nil
}

func (w *wizardStepsWorld) configurationCompleted() error {
	w.configured = true
	return nil
}

func (w *wizardStepsWorld) configurationNotCompleted() error {
	w.configured = false
	return nil
}

func (w *wizardStepsWorld) derive() error {
	w.states = DeriveStepStates(w.hasSource, w.configured)
	return nil
}

func (w *wizardStepsWorld) stepIs(step, want string) error {
	var got StepState
	switch step {
	case "Connect":
		got = w.states.Connect
	case "Configure":
		got = w.states.Configure
	case "Sync":
		got = w.states.Sync
	default:
		return fmt.Errorf("unknown step %q", step)
	}
	if string(got) != want {
		return fmt.Errorf("%s step is %q, expected %q", step, got, want)
	}
	return nil
}

func initializeWizardStepsScenario(sc *godog.ScenarioContext) {
	world := &wizardStepsWorld{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*world = wizardStepsWorld{}
		return ctx, nil
	})

	sc.Step(`^no source has been created$`, world.noSourceCreated)
	sc.Step(`^a source has been created$`, world.sourceCreated)
	sc.Step(`^configuration is completed$`, world.configurationCompleted)
	sc.Step(`^configuration is not completed$`, world.configurationNotCompleted)
	sc.Step(`^the step states are derived$`, world.derive)
	sc.Step(`^the (Connect|Configure|Sync) step is "([^"]*)"$`, world.stepIs)
}

func TestWizardStepsFeature(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeWizardStepsScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("wizard steps feature failed")
	}
}
