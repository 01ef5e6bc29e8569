// Package version reports the binary's version from a link-time
// override or the embedded build info.
package version

import (
	"runtime/debug"
	"strings"
	"time"
)

const modulePath = "pkt.systems/termsherpa"

const unknownVersion = "v0.0.0-unknown"

// buildVersion may be injected at link time:
// -ldflags "-X pkt.systems/termsherpa/internal/version.buildVersion=v1.2.3".
var buildVersion string

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Current returns the version string, without any local-modification
// suffix.
func Current() string {
	return resolve(false)
}

// CurrentWithDirty returns the version string, keeping a "+dirty"
// suffix when the working tree was modified at build time.
func CurrentWithDirty() string {
	return resolve(true)
}

// Module returns the main module path from build info when available.
func Module() string {
	if info, ok := readBuildInfo(); ok {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			return path
		}
	}
	return modulePath
}

func resolve(withDirty bool) string {
	if v := strings.TrimSpace(buildVersion); v != "" {
		return stripDirty(v, withDirty)
	}
	info, ok := readBuildInfo()
	if !ok {
		return unknownVersion
	}
	if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
		return stripDirty(v, withDirty)
	}
	vcs := vcsFromSettings(info.Settings)
	if !vcs.ok {
		return unknownVersion
	}
	v := vcs.pseudoVersion()
	if vcs.dirty && withDirty {
		v += "+dirty"
	}
	return v
}

func stripDirty(v string, withDirty bool) string {
	if withDirty {
		return v
	}
	return strings.TrimSuffix(v, "+dirty")
}

// vcsInfo is the VCS stamp embedded by the toolchain.
type vcsInfo struct {
	revision string
	stamp    time.Time
	dirty    bool
	ok       bool
}

func vcsFromSettings(settings []debug.BuildSetting) vcsInfo {
	var v vcsInfo
	var rawTime string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			v.revision = s.Value
		case "vcs.time":
			rawTime = s.Value
		case "vcs.modified":
			v.dirty = s.Value == "true"
		}
	}
	if v.revision == "" || rawTime == "" {
		return vcsInfo{}
	}
	parsed, err := time.Parse(time.RFC3339, rawTime)
	if err != nil {
		return vcsInfo{}
	}
	v.stamp = parsed
	v.ok = true
	return v
}

// pseudoVersion formats the stamp like a Go module pseudo-version.
func (v vcsInfo) pseudoVersion() string {
	rev := v.revision
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return "v0.0.0-" + v.stamp.UTC().Format("20060102150405") + "-" + rev
}
