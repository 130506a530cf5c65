package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	info := Get()
	if info.Version != "v1.2.3" {
		t.Errorf("Version = %q", info.Version)
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if !strings.Contains(Template(), "version v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
}
