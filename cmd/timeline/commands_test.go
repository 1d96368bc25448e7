package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"formation-hq/timeline/pkg/cli"
	"formation-hq/timeline/pkg/timeline"
	"formation-hq/timeline/pkg/timeline/preset"
	"formation-hq/timeline/pkg/timeline/reconcile"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// setupConfig points the global flags at a fresh SQLite store under a
// temp dir and restores them when the test ends.
func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := `store:
  backend: sqlite
  sqlite:
    path: ` + filepath.Join(dir, "db", "timeline.db") + `
    driver: sqlite
telemetry:
  logging:
    level: error
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgFile, outputFormat, verbose = cfgPath, "text", false
	t.Cleanup(func() {
		cfgFile, outputFormat, verbose = "", "text", false
		presetFlags.file = ""
		policyFlags.volume = ""
		releaseFlags.volume = ""
		reconcileFlags = struct {
			volume  string
			desired string
			preset  string
			from    string
			mode    string
			dryRun  bool
		}{mode: "edit"}
	})
	return dir
}

func execute(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := fn(cmd, args)
	return out.String(), err
}

func TestConvert(t *testing.T) {
	setupConfig(t)

	tests := []struct {
		name string
		fn   func(*cobra.Command, []string) error
		args []string
		want string
		code int
	}{
		{"weeks to seconds", runConvertToSeconds, []string{"2", "weeks"}, "1209600 seconds = 2 weeks\n", cli.ExitOK},
		{"fractional day", runConvertToSeconds, []string{"1.5", "DAYS"}, "129600 seconds = 36 hours\n", cli.ExitOK},
		{"rounds to nearest second", runConvertToSeconds, []string{"0.7", "days"}, "60480 seconds = 16.8 hours\n", cli.ExitOK},
		{"from seconds", runConvertFromSeconds, []string{"2678400"}, "2678400 seconds = 1 month\n", cli.ExitOK},
		{"bad unit", runConvertToSeconds, []string{"2", "fortnights"}, "", cli.ExitConfig},
		{"negative magnitude", runConvertToSeconds, []string{"-1", "days"}, "", cli.ExitConfig},
		{"bad seconds", runConvertFromSeconds, []string{"ten"}, "", cli.ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.fn, tt.args...)
			if code := cli.ExitCode(err); code != tt.code {
				t.Fatalf("exit code = %d (%v), want %d", code, err, tt.code)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestConvertJSON(t *testing.T) {
	setupConfig(t)
	outputFormat = "json"

	out, err := execute(t, runConvertFromSeconds, "86400")
	if err != nil {
		t.Fatal(err)
	}
	var got conversion
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Magnitude != 1 || got.Unit != "days" || got.Seconds != 86400 {
		t.Errorf("conversion = %+v", got)
	}
}

func TestPresetCommands(t *testing.T) {
	dir := setupConfig(t)

	out, err := execute(t, runPresetList)
	if err != nil {
		t.Fatalf("preset list error = %v", err)
	}
	for _, label := range []string{preset.LabelStandard, preset.LabelSparse, preset.LabelDense} {
		if !strings.Contains(out, label+"\n") {
			t.Errorf("preset list missing %s:\n%s", label, out)
		}
	}

	if _, err := execute(t, runPresetMatch); cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("match without --file error = %v, want config error", err)
	}

	// Sparse's rules in reverse order under other names still match Sparse.
	sparse, ok := preset.DefaultLibrary().Get(preset.LabelSparse)
	if !ok {
		t.Fatal("Sparse preset missing")
	}
	rules := make([]timeline.RetentionPolicy, 0, len(sparse.Rules))
	for i := len(sparse.Rules) - 1; i >= 0; i-- {
		r := sparse.Rules[i]
		r.Name = "mine-" + r.Name
		rules = append(rules, r)
	}
	data, err := yaml.Marshal(rules)
	if err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "sparse.yaml")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatal(err)
	}
	presetFlags.file = file

	out, err = execute(t, runPresetMatch)
	if err != nil {
		t.Fatalf("preset match error = %v", err)
	}
	if out != preset.LabelSparse+"\n" {
		t.Errorf("preset match = %q, want %q", out, preset.LabelSparse)
	}
}

func TestReconcileLifecycle(t *testing.T) {
	setupConfig(t)

	reconcileFlags.volume = "vol-1"
	reconcileFlags.mode = "create"
	reconcileFlags.preset = preset.LabelStandard
	out, err := execute(t, runReconcile)
	if err != nil {
		t.Fatalf("reconcile create error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "8 operations, 0 failed") {
		t.Errorf("create output:\n%s", out)
	}

	attached := listPolicies(t, "vol-1")
	if len(attached) != 4 {
		t.Fatalf("attached = %d policies, want 4", len(attached))
	}
	for _, p := range attached {
		if !strings.HasSuffix(p.Name, "_vol-1") {
			t.Errorf("name %q missing volume suffix", p.Name)
		}
	}

	// Converged: nothing to do.
	reconcileFlags.mode = "edit"
	reconcileFlags.preset = ""
	desiredFile := filepath.Join(t.TempDir(), "desired.yaml")
	writeDesired(t, desiredFile, attached)
	reconcileFlags.desired = desiredFile
	out, err = execute(t, runReconcile)
	if err != nil || !strings.Contains(out, "up to date") {
		t.Fatalf("converged reconcile = %v\n%s", err, out)
	}

	// Dry run of a switch to Dense plans four replacements and applies none.
	reconcileFlags.desired = ""
	reconcileFlags.preset = preset.LabelDense
	reconcileFlags.dryRun = true
	out, err = execute(t, runReconcile)
	if err != nil || !strings.Contains(out, "16 operations planned") {
		t.Fatalf("dry run = %v\n%s", err, out)
	}
	if after := listPolicies(t, "vol-1"); after[0].ID != attached[0].ID {
		t.Error("dry run changed the store")
	}

	// Clone onto a second volume.
	reconcileFlags.dryRun = false
	reconcileFlags.preset = ""
	reconcileFlags.volume = "vol-2"
	reconcileFlags.mode = "clone"
	reconcileFlags.from = "vol-1"
	outputFormat = "json"
	out, err = execute(t, runReconcile)
	if err != nil {
		t.Fatalf("clone error = %v", err)
	}
	var rep reconcile.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("clone output is not JSON: %v\n%s", err, out)
	}
	if rep.Mode != reconcile.ModeClone || len(rep.Plan.Creates) != 4 || rep.Failed != 0 {
		t.Errorf("clone report = %+v", rep)
	}
	cloned := listPolicies(t, "vol-2")
	if len(cloned) != 4 || cloned[0].ID == attached[0].ID {
		t.Errorf("cloned = %+v", cloned)
	}

	// Release vol-1; vol-2 keeps its copies.
	outputFormat = "text"
	releaseFlags.volume = "vol-1"
	if out, err := execute(t, runRelease); err != nil {
		t.Fatalf("release error = %v\n%s", err, out)
	}
	if left := listPolicies(t, "vol-1"); len(left) != 0 {
		t.Errorf("vol-1 after release = %+v", left)
	}
	policyFlags.volume = ""
	outputFormat = "json"
	out, err = execute(t, runPolicyList)
	if err != nil {
		t.Fatal(err)
	}
	var all []timeline.RetentionPolicy
	if err := json.Unmarshal([]byte(out), &all); err != nil || len(all) != 4 {
		t.Errorf("all policies = %d, %v", len(all), err)
	}
}

func TestReconcileFlagErrors(t *testing.T) {
	setupConfig(t)

	tests := []struct {
		name   string
		volume string
		mode   string
		preset string
		from   string
	}{
		{"no volume", "", "edit", preset.LabelStandard, ""},
		{"bad mode", "vol-1", "merge", preset.LabelStandard, ""},
		{"no source", "vol-1", "edit", "", ""},
		{"two sources", "vol-1", "edit", preset.LabelStandard, "vol-2"},
		{"unknown preset", "vol-1", "create", "Nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reconcileFlags.volume = tt.volume
			reconcileFlags.mode = tt.mode
			reconcileFlags.preset = tt.preset
			reconcileFlags.from = tt.from
			_, err := execute(t, runReconcile)
			if code := cli.ExitCode(err); code != cli.ExitConfig {
				t.Errorf("exit code = %d (%v), want %d", code, err, cli.ExitConfig)
			}
		})
	}
}

func TestReportViewText(t *testing.T) {
	rep := reportView{
		RunID:    "run-1",
		VolumeID: "vol-1",
		Mode:     reconcile.ModeEdit,
		Plan: reconcile.Plan{
			Deletes: []timeline.RetentionPolicy{{ID: 3, Name: "old"}},
		},
		Outcomes: []reconcile.OutcomeReport{
			{Op: reconcile.OpDetach, PolicyID: 3, Name: "old", Error: "boom"},
		},
		Failed: 1,
	}

	var buf bytes.Buffer
	if err := rep.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Volume vol-1 (edit) run run-1", "- delete #3 old", "✗ detach #3 old: boom", "1 operations, 1 failed"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestFinishReportsPartialFailure(t *testing.T) {
	setupConfig(t)

	res := reconcile.Result{
		RunID:    "r",
		VolumeID: "vol-1",
		Mode:     reconcile.ModeEdit,
		Outcomes: []reconcile.Outcome{
			{Op: reconcile.OpCreate, Name: "a"},
			{Op: reconcile.OpDetach, PolicyID: 2, Name: "b", Err: errors.New("offline")},
		},
	}
	_, err := execute(t, func(cmd *cobra.Command, _ []string) error { return finish(cmd, "reconcile", res) })
	if cli.ExitCode(err) != cli.ExitPartial {
		t.Errorf("finish() error = %v, want partial failure", err)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	versionCmd.Run(cmd, nil)

	if !strings.Contains(buf.String(), "Timeline "+Version) {
		t.Errorf("version output = %q", buf.String())
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"convert": false, "preset": false, "policy": false, "reconcile": false, "release": false, "serve": false, "version": false, "completion": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func listPolicies(t *testing.T, volume string) []timeline.RetentionPolicy {
	t.Helper()
	prev := outputFormat
	outputFormat = "json"
	policyFlags.volume = volume
	defer func() { outputFormat = prev }()

	out, err := execute(t, runPolicyList)
	if err != nil {
		t.Fatalf("policy list error = %v", err)
	}
	var policies []timeline.RetentionPolicy
	if err := json.Unmarshal([]byte(out), &policies); err != nil {
		t.Fatalf("policy list output is not JSON: %v\n%s", err, out)
	}
	return policies
}

func writeDesired(t *testing.T, path string, policies []timeline.RetentionPolicy) {
	t.Helper()
	desired := make([]timeline.DesiredPolicy, len(policies))
	for i, p := range policies {
		desired[i] = timeline.DesiredPolicy{RetentionPolicy: p, Use: true}
	}
	data, err := json.Marshal(desired)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
