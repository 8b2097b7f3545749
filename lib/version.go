package router

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// VersionInfo returns human-readable version information in a format suitable
// for concatenation with other messages.
func VersionInfo() (v string) {
	v = "(version info unavailable)"

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	rev, commitTime, dirty := buildSettings(bi.Settings)
	if rev == "" {
		return
	}

	commitTimeOrDirty := "dirty"
	if dirty == "false" {
		commitTimeOrDirty = commitTime
	}
	return fmt.Sprintf("built from commit %.8s (%s) using %s", rev, commitTimeOrDirty, bi.GoVersion)
}

func buildSettings(bs []debug.BuildSetting) (rev, commitTime, dirty string) {
	for _, b := range bs {
		switch b.Key {
		case "vcs.modified":
			dirty = b.Value
		case "vcs.revision":
			rev = b.Value
		case "vcs.time":
			commitTime = b.Value
		}
	}
	return
}

// DeployedVersion returns the service version that a build will be deployed
// as. The deploy tooling bumps the manifest's version after building, so this
// is one more than the version recorded in manifest. A version that isn't a
// number counts as 0.
func DeployedVersion(manifest []byte) (int, error) {
	var m map[string]any
	if err := toml.Unmarshal(manifest, &m); err != nil {
		return 0, fmt.Errorf("failed to parse service manifest: %w", err)
	}

	raw, ok := m["version"]
	if !ok {
		return 0, errors.New("service manifest has no version")
	}

	var v int
	switch t := raw.(type) {
	case int64:
		v = int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			v = n
		}
	}
	return v + 1, nil
}
