package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level).SetOutput(&out, &errOut).SetColors(false).SetShowTime(false)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      DiagnosticLevel
		wantOut    []string
		wantErrOut []string
		absent     []string
	}{
		{
			name:       "quiet shows errors only",
			level:      DiagnosticError,
			wantErrOut: []string{"[ERROR] boom"},
			absent:     []string{"careful", "hello", "details"},
		},
		{
			name:       "default hides verbose",
			level:      DiagnosticInfo,
			wantOut:    []string{"[INFO] hello"},
			wantErrOut: []string{"[ERROR] boom", "[WARN] careful"},
			absent:     []string{"details"},
		},
		{
			name:       "verbose shows everything but debug",
			level:      DiagnosticVerbose,
			wantOut:    []string{"[INFO] hello", "[VERBOSE] details"},
			wantErrOut: []string{"[WARN] careful"},
			absent:     []string{"trace"},
		},
		{
			name:   "silent shows nothing",
			level:  DiagnosticSilent,
			absent: []string{"boom", "careful", "hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, out, errOut := newTestDiagnostics(tt.level)
			d.Error("boom")
			d.Warn("careful")
			d.Info("hello")
			d.Verbose("details")
			d.Debug("trace")

			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			for _, want := range tt.wantErrOut {
				assert.Contains(t, errOut.String(), want)
			}
			all := out.String() + errOut.String()
			for _, missing := range tt.absent {
				assert.NotContains(t, all, missing)
			}
		})
	}
}

func TestDiagnosticSystem_SummaryIsSorted(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.Summary("Done", map[string]interface{}{"written": 2, "descriptors": 3, "unchanged": 1})

	assert.Equal(t, "\nDone\n   descriptors: 3\n   unchanged: 1\n   written: 2\n", out.String())
}

func TestDiagnosticSystem_Indent(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.Indent()
	d.List("shop.Order")
	d.Unindent()
	d.Unindent()
	d.PhaseItem("%d written", 2)

	assert.Equal(t, "  - shop.Order\n✓ 2 written\n", out.String())
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, DiagnosticError, LevelFor(true, true))
	assert.Equal(t, DiagnosticVerbose, LevelFor(false, true))
	assert.Equal(t, DiagnosticInfo, LevelFor(false, false))
}
