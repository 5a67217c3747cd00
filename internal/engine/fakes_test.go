package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
)

// fakeResource simulates an external tool whose presence flips once installed.
type fakeResource struct {
	mu         sync.Mutex
	present    bool
	installErr error
	probeErr   error
	probePanic bool
	probes     int
	installs   int
	sawEnv     []environ.Env
}

func (f *fakeResource) Probe(_ context.Context, env environ.Env, _ model.Resource) (model.PresenceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	f.sawEnv = append(f.sawEnv, env)
	if f.probePanic {
		panic("probe exploded")
	}
	if f.probeErr != nil {
		return model.Present, f.probeErr
	}
	if f.present {
		return model.Present, nil
	}
	return model.Absent, nil
}

func (f *fakeResource) Install(_ context.Context, _ environ.Env, res model.Resource) model.InstallResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs++
	if f.installErr != nil {
		return model.Failed(f.installErr)
	}
	f.present = true
	return model.Installed("installed " + res.Name())
}

func (f *fakeResource) counts() (probes, installs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes, f.installs
}

func fakeStep(id string, res *fakeResource) Step {
	return Step{
		ID:        id,
		Resource:  model.MustResource(id, model.KindPackage, ""),
		Probe:     res,
		Installer: res,
	}
}

type recordingObserver struct {
	started  []int
	finished []string
}

func (o *recordingObserver) StepStarted(index int, _ *Step) {
	o.started = append(o.started, index)
}

func (o *recordingObserver) StepFinished(entry model.ReportEntry) {
	o.finished = append(o.finished, entry.StepID)
}

type staticCondition struct {
	holds bool
	err   error
}

func (c staticCondition) Holds(environ.Env) (bool, error) { return c.holds, c.err }
func (c staticCondition) String() string                  { return "static" }

var errNetwork = errors.New("network unreachable")

func outcomes(report *model.RunReport) []model.Outcome {
	var out []model.Outcome
	for _, entry := range report.Entries() {
		out = append(out, entry.Result.Outcome)
	}
	return out
}
