package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	xrerrors "github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/xr"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return p
}

func TestLoad_AllFormats(t *testing.T) {
	dir := t.TempDir()

	yamlPath := writeTempFile(t, dir, "xr.yaml", `
form_factor: handheld
view_configuration: mono
reference_space: local
default_action_map: maps/default.yaml
enabled: true
engine_version: 4.2.1
`)
	jsonPath := writeTempFile(t, dir, "xr.json", `{"form_factor":"handheld","view_configuration":"mono","reference_space":"local","default_action_map":"maps/default.yaml","enabled":true,"engine_version":"4.2.1"}`)
	tomlPath := writeTempFile(t, dir, "xr.toml", `
form_factor = "handheld"
view_configuration = "mono"
reference_space = "local"
default_action_map = "maps/default.yaml"
enabled = true
engine_version = "4.2.1"
`)

	for _, p := range []string{yamlPath, jsonPath, tomlPath} {
		t.Run(filepath.Ext(p), func(t *testing.T) {
			cfg, err := Load(p)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.XRFormFactor() != xr.FormFactorHandheldDisplay {
				t.Errorf("form factor = %v", cfg.XRFormFactor())
			}
			if cfg.XRViewConfiguration() != xr.ViewConfigurationTypePrimaryMono {
				t.Errorf("view configuration = %v", cfg.XRViewConfiguration())
			}
			if cfg.XRReferenceSpace() != xr.ReferenceSpaceTypeLocal {
				t.Errorf("reference space = %v", cfg.XRReferenceSpace())
			}
			if cfg.DefaultActionMap != "maps/default.yaml" || !cfg.Enabled {
				t.Errorf("cfg = %+v", cfg)
			}
			if cfg.EngineVersionNumber() != 40201 {
				t.Errorf("EngineVersionNumber = %d, want 40201", cfg.EngineVersionNumber())
			}
			// untouched keys keep defaults
			if cfg.RenderDriver != "software" {
				t.Errorf("RenderDriver = %q", cfg.RenderDriver)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Load(writeTempFile(t, dir, "xr.ini", "x=1")); err == nil {
		t.Fatal("expected error for unsupported extension")
	}

	_, err := Load(writeTempFile(t, dir, "bad.yaml", "form_factor: [unterminated"))
	if !errors.Is(err, &xrerrors.Error{Phase: xrerrors.PhaseConfig, Kind: xrerrors.KindInvalidData}) {
		t.Fatalf("parse error = %v", err)
	}

	_, err = Load(writeTempFile(t, dir, "enum.toml", `reference_space = "roomscale"`))
	var xe *xrerrors.Error
	if !errors.As(err, &xe) || len(xe.Path) != 1 || xe.Path[0] != "reference_space" {
		t.Fatalf("validation error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		ok     bool
	}{
		{"default", func(*Settings) {}, true},
		{"bad form factor", func(s *Settings) { s.FormFactor = "glasses" }, false},
		{"bad view configuration", func(s *Settings) { s.ViewConfiguration = "quad" }, false},
		{"bad engine version", func(s *Settings) { s.EngineVersion = "four" }, false},
		{"empty engine version", func(s *Settings) { s.EngineVersion = "" }, true},
		{"minor too large", func(s *Settings) { s.EngineVersion = "1.100.0" }, false},
		{"patch too large", func(s *Settings) { s.EngineVersion = "1.0.100" }, false},
		{"major too large", func(s *Settings) { s.EngineVersion = "429497.0.0" }, false},
		{"largest packable", func(s *Settings) { s.EngineVersion = "429495.99.99" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if d.XRFormFactor() != xr.FormFactorHeadMountedDisplay ||
		d.XRViewConfiguration() != xr.ViewConfigurationTypePrimaryStereo ||
		d.XRReferenceSpace() != xr.ReferenceSpaceTypeStage || !d.Enabled {
		t.Fatalf("Default() = %+v", d)
	}
	if (Settings{}).EngineVersionNumber() != 0 {
		t.Fatal("empty engine version should pack to 0")
	}
}

func TestEngineVersionNumber(t *testing.T) {
	tests := []struct {
		version string
		want    uint32
	}{
		{"1.2.3", 10203},
		{"4.2.1", 40201},
		{"429495.99.99", 4294959999},
		{"1.100.0", 0},
		{"1.0.100", 0},
		{"5000000.0.0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			s := Settings{EngineVersion: tt.version}
			if got := s.EngineVersionNumber(); got != tt.want {
				t.Errorf("EngineVersionNumber(%s) = %d, want %d", tt.version, got, tt.want)
			}
		})
	}
}
