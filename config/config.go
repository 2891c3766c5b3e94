package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/xr"
)

const (
	FormFactorHeadMounted = "head_mounted"
	FormFactorHandheld    = "handheld"

	ViewConfigurationMono   = "mono"
	ViewConfigurationStereo = "stereo"

	ReferenceSpaceLocal = "local"
	ReferenceSpaceStage = "stage"
)

// Settings is read once when the bridge is constructed.
type Settings struct {
	FormFactor        string `json:"form_factor" yaml:"form_factor" toml:"form_factor"`
	ViewConfiguration string `json:"view_configuration" yaml:"view_configuration" toml:"view_configuration"`
	ReferenceSpace    string `json:"reference_space" yaml:"reference_space" toml:"reference_space"`
	DefaultActionMap  string `json:"default_action_map" yaml:"default_action_map" toml:"default_action_map"`
	ApplicationName   string `json:"application_name" yaml:"application_name" toml:"application_name"`
	EngineVersion     string `json:"engine_version" yaml:"engine_version" toml:"engine_version"`
	RenderDriver      string `json:"render_driver" yaml:"render_driver" toml:"render_driver"`
	Enabled           bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
}

// Default returns a head-mounted stereo setup in stage space.
func Default() Settings {
	return Settings{
		FormFactor:        FormFactorHeadMounted,
		ViewConfiguration: ViewConfigurationStereo,
		ReferenceSpace:    ReferenceSpaceStage,
		ApplicationName:   "xr-bridge",
		EngineVersion:     "1.0.0",
		RenderDriver:      "software",
		Enabled:           true,
	}
}

// Load reads a settings file based on its extension.
// Supports: .yaml/.yml, .json, .toml
// Keys missing from the file keep their Default values.
func Load(path string) (Settings, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.InvalidInput(errors.PhaseConfig, "empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, errors.Unsupported(errors.PhaseConfig, "config extension "+ext)
	}
	if err != nil {
		return cfg, errors.ParseFailed(errors.PhaseConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects unknown enum strings and malformed versions.
func (s Settings) Validate() error {
	switch s.FormFactor {
	case FormFactorHeadMounted, FormFactorHandheld:
	default:
		return errors.InvalidData(errors.PhaseConfig, []string{"form_factor"}, "unknown form factor "+quote(s.FormFactor))
	}
	switch s.ViewConfiguration {
	case ViewConfigurationMono, ViewConfigurationStereo:
	default:
		return errors.InvalidData(errors.PhaseConfig, []string{"view_configuration"}, "unknown view configuration "+quote(s.ViewConfiguration))
	}
	switch s.ReferenceSpace {
	case ReferenceSpaceLocal, ReferenceSpaceStage:
	default:
		return errors.InvalidData(errors.PhaseConfig, []string{"reference_space"}, "unknown reference space "+quote(s.ReferenceSpace))
	}
	if s.EngineVersion != "" {
		v, err := semver.NewVersion(s.EngineVersion)
		if err != nil {
			return errors.New(errors.PhaseConfig, errors.KindInvalidData).
				Path("engine_version").
				Cause(err).
				Detail("not a semantic version").
				Build()
		}
		if _, ok := packVersion(v); !ok {
			return errors.New(errors.PhaseConfig, errors.KindInvalidData).
				Path("engine_version").
				Value(s.EngineVersion).
				Detail("minor and patch must be below 100 and major at most %d", maxEngineMajor).
				Build()
		}
	}
	return nil
}

func quote(s string) string {
	return "\"" + s + "\""
}

func (s Settings) XRFormFactor() xr.FormFactor {
	if s.FormFactor == FormFactorHandheld {
		return xr.FormFactorHandheldDisplay
	}
	return xr.FormFactorHeadMountedDisplay
}

func (s Settings) XRViewConfiguration() xr.ViewConfigurationType {
	if s.ViewConfiguration == ViewConfigurationMono {
		return xr.ViewConfigurationTypePrimaryMono
	}
	return xr.ViewConfigurationTypePrimaryStereo
}

func (s Settings) XRReferenceSpace() xr.ReferenceSpaceType {
	if s.ReferenceSpace == ReferenceSpaceLocal {
		return xr.ReferenceSpaceTypeLocal
	}
	return xr.ReferenceSpaceTypeStage
}

// maxEngineMajor is the largest major version that packs into 32 bits.
const maxEngineMajor = (math.MaxUint32 - 9999) / 10000

// EngineVersionNumber packs the engine version as major*10000 + minor*100 + patch.
// An empty, malformed or unpackable version yields 0.
func (s Settings) EngineVersionNumber() uint32 {
	v, err := semver.NewVersion(s.EngineVersion)
	if err != nil {
		return 0
	}
	n, _ := packVersion(v)
	return n
}

func packVersion(v *semver.Version) (uint32, bool) {
	if v.Major() > maxEngineMajor || v.Minor() > 99 || v.Patch() > 99 {
		return 0, false
	}
	return uint32(v.Major()*10000 + v.Minor()*100 + v.Patch()), true
}
