package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/flarebyte/jsoncsv/internal/buildinfo"
)

func withBuildInfo(t *testing.T, v, commit, date string) {
	t.Helper()
	oldVersion, oldCommit, oldDate := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	oldShort, oldJSON := flagShort, flagJSON
	t.Cleanup(func() {
		buildinfo.Version, buildinfo.Commit, buildinfo.Date = oldVersion, oldCommit, oldDate
		flagShort, flagJSON = oldShort, oldJSON
		VersionCmd.SetOut(nil)
	})
	buildinfo.Version, buildinfo.Commit, buildinfo.Date = v, commit, date
}

func TestVersionDefaultOutputStable(t *testing.T) {
	withBuildInfo(t, "", "", "")
	flagShort, flagJSON = false, false

	var out bytes.Buffer
	VersionCmd.SetOut(&out)
	if err := VersionCmd.RunE(VersionCmd, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "jsoncsv dev\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestVersionJSON(t *testing.T) {
	withBuildInfo(t, "1.2.3", "0123456789abcdef", "2026-10-19")
	flagShort, flagJSON = false, true

	var out bytes.Buffer
	VersionCmd.SetOut(&out)
	if err := VersionCmd.RunE(VersionCmd, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("json: %v\n%s", err, out.String())
	}
	if got["version"] != "1.2.3" || got["commit"] != "0123456789abcdef" {
		t.Fatalf("unexpected json: %v", got)
	}
}
