package actionmap

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/openxr"
)

//go:embed default.yaml
var defaultDocument []byte

// Document is a parsed action map.
type Document struct {
	ActionSets          []ActionSet `yaml:"action_sets"`
	InteractionProfiles []Profile   `yaml:"interaction_profiles"`
}

type ActionSet struct {
	Name          string   `yaml:"name"`
	LocalizedName string   `yaml:"localized_name"`
	Priority      uint32   `yaml:"priority"`
	Actions       []Action `yaml:"actions"`
}

type Action struct {
	Name          string   `yaml:"name"`
	LocalizedName string   `yaml:"localized_name"`
	Kind          string   `yaml:"kind"`
	Trackers      []string `yaml:"trackers"`
}

type Profile struct {
	Path     string    `yaml:"path"`
	Bindings []Binding `yaml:"bindings"`
}

// Binding maps one action, written "set/action", to input paths.
type Binding struct {
	Action string   `yaml:"action"`
	Paths  []string `yaml:"paths"`
}

// Load reads and validates a YAML action map file.
func Load(path string) (*Document, error) {
	if path == "" {
		return nil, errors.InvalidInput(errors.PhaseConfig, "empty action map path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML action map.
func Parse(b []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.ParseFailed(errors.PhaseConfig, "action map", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Default returns the built-in action map.
func Default() *Document {
	doc, err := Parse(defaultDocument)
	if err != nil {
		panic("actionmap: built-in document is invalid: " + err.Error())
	}
	return doc
}

// Validate checks names, kinds and binding references.
func (d *Document) Validate() error {
	actions := make(map[string]bool)
	sets := make(map[string]bool)

	for i, s := range d.ActionSets {
		if s.Name == "" {
			return invalid([]string{"action_sets", strconv.Itoa(i), "name"}, "action set needs a name")
		}
		if sets[s.Name] {
			return invalid([]string{"action_sets", s.Name}, "duplicate action set")
		}
		sets[s.Name] = true

		for _, a := range s.Actions {
			path := []string{"action_sets", s.Name, a.Name}
			if a.Name == "" || strings.Contains(a.Name, "/") {
				return invalid(path, "action name must be non-empty and must not contain '/'")
			}
			key := s.Name + "/" + a.Name
			if actions[key] {
				return invalid(path, "duplicate action")
			}
			if _, ok := openxr.ParseActionKind(a.Kind); !ok {
				return invalid(path, "unknown action kind "+quote(a.Kind))
			}
			actions[key] = true
		}
	}

	for _, p := range d.InteractionProfiles {
		if p.Path == "" {
			return invalid([]string{"interaction_profiles"}, "interaction profile needs a path")
		}
		for _, bd := range p.Bindings {
			if !actions[bd.Action] {
				return invalid([]string{"interaction_profiles", p.Path}, "binding references unknown action "+quote(bd.Action))
			}
		}
	}
	return nil
}

func invalid(path []string, detail string) error {
	return errors.InvalidData(errors.PhaseConfig, path, detail)
}

func quote(s string) string {
	return "\"" + s + "\""
}
