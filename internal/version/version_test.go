package version

import (
	"runtime/debug"
	"testing"
	"time"
)

func TestCurrentPrefersBuildVersion(t *testing.T) {
	old := buildVersion
	buildVersion = "v1.2.3"
	t.Cleanup(func() { buildVersion = old })

	if got := Current(); got != "v1.2.3" {
		t.Fatalf("expected build version, got %q", got)
	}
}

func TestCurrentStripsDirtySuffix(t *testing.T) {
	old := buildVersion
	buildVersion = "v1.2.3+dirty"
	t.Cleanup(func() { buildVersion = old })

	if got := Current(); got != "v1.2.3" {
		t.Fatalf("expected stripped version, got %q", got)
	}
	if got := CurrentWithDirty(); got != "v1.2.3+dirty" {
		t.Fatalf("expected dirty version, got %q", got)
	}
}

func stubBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	old := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
	t.Cleanup(func() { readBuildInfo = old })
}

func TestResolveUsesVCSStamp(t *testing.T) {
	ts := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)
	stubBuildInfo(t, &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890abcdef"},
			{Key: "vcs.time", Value: ts.Format(time.RFC3339)},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)

	want := "v0.0.0-20250102030405-1234567890ab"
	if got := Current(); got != want {
		t.Fatalf("current = %q, want %q", got, want)
	}
	if got := CurrentWithDirty(); got != want+"+dirty" {
		t.Fatalf("current with dirty = %q", got)
	}
}

func TestResolveWithoutBuildInfo(t *testing.T) {
	stubBuildInfo(t, nil, false)
	if got := Current(); got != unknownVersion {
		t.Fatalf("current = %q", got)
	}
}

func TestVCSFromSettingsIncomplete(t *testing.T) {
	v := vcsFromSettings([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "abcdef"},
	})
	if v.ok {
		t.Fatalf("expected incomplete settings to be rejected")
	}
}

func TestModulePath(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Path: "example.org/app"}}, true)
	if got := Module(); got != "example.org/app" {
		t.Fatalf("module = %q", got)
	}
	stubBuildInfo(t, nil, false)
	if got := Module(); got != modulePath {
		t.Fatalf("module fallback = %q", got)
	}
}
