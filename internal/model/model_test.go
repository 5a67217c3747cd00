package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resName string
		kind    Kind
		wantErr string
	}{
		{"package", "Git.Git", KindPackage, ""},
		{"extension", "ms-python.python", KindExtension, ""},
		{"trims name", "  fnm ", KindBinary, ""},
		{"empty name", "  ", KindBinary, "name is required"},
		{"unknown kind", "x", Kind("service"), "unknown resource kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := NewResource(tt.resName, tt.kind, "")
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.kind, res.Kind())
			require.NotContains(t, res.Name(), " ")
		})
	}
}

func TestResourceString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "package:node@lts", MustResource("node", KindPackage, VersionLTS).String())
	require.Equal(t, "binary:fnm", MustResource("fnm", KindBinary, "").String())
	require.Panics(t, func() { MustResource("", KindBinary, "") })
}

func TestInstallResultConstructors(t *testing.T) {
	t.Parallel()

	reason := errors.New("exit code 1")
	failed := Failed(reason)
	require.True(t, failed.IsFailure())
	require.False(t, failed.Satisfied())
	require.Equal(t, "exit code 1", failed.Message)
	require.Same(t, reason, failed.Reason)

	require.True(t, Installed("ok").Satisfied())
	require.True(t, AlreadyPresent("ok").Satisfied())
	require.False(t, Skipped("skip").Satisfied())
	require.False(t, Skipped("skip").IsFailure())
}

func TestPresenceResultString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "present", Present.String())
	require.Equal(t, "absent", Absent.String())
	var zero PresenceResult
	require.Equal(t, Absent, zero)
}

func TestRunReportIsAppendOnlyCopy(t *testing.T) {
	t.Parallel()

	report := NewRunReport("workstation", "run-1")
	require.Equal(t, RunPending, report.State)

	report.Append(ReportEntry{Index: 1, StepID: "a", Result: AlreadyPresent("")})
	entries := report.Entries()
	entries[0].StepID = "mutated"

	require.Equal(t, "a", report.Entries()[0].StepID)
	require.Equal(t, 1, report.Len())
}

func TestRunReportCountsAndExitCode(t *testing.T) {
	t.Parallel()

	report := NewRunReport("", "")
	report.Append(ReportEntry{Result: AlreadyPresent("")})
	report.Append(ReportEntry{Result: Installed("")})
	report.Append(ReportEntry{Result: Skipped("")})
	report.Append(ReportEntry{Result: Failed(errors.New("boom"))})

	require.Equal(t, ReportCounts{Installed: 1, AlreadyPresent: 1, Skipped: 1, Failed: 1}, report.Counts())

	report.MarkHalted(4, errors.New("boom"))
	require.Equal(t, RunHalted, report.State)
	require.Equal(t, 4, report.HaltIndex)
	require.Equal(t, 1, report.ExitCode())

	report.MarkCompleted()
	require.Equal(t, 0, report.ExitCode())
}

func TestVerificationSummary(t *testing.T) {
	t.Parallel()

	summary := &VerificationSummary{}
	summary.Add(VerificationResult{StepID: "a", Presence: Present})
	summary.Add(VerificationResult{StepID: "b", Skipped: true})
	require.True(t, summary.AllPresent())
	require.Equal(t, 0, summary.ExitCode())

	summary.Add(VerificationResult{StepID: "c", Presence: Absent})
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 1, summary.Present)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 1, summary.Absent)
	require.Equal(t, 1, summary.ExitCode())
}
