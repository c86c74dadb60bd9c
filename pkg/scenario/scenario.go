// Package scenario replays scripted window-system events through a
// [forge.Manager].
//
// A scenario describes a display (monitor work areas and a workspace count)
// and an ordered list of events. Files are TOML or YAML, chosen by
// extension:
//
//	name = "editor and terminal"
//	workspaces = 2
//
//	[[monitors]]
//	width = 1920
//	height = 1080
//
//	[[events]]
//	op = "map"
//	window = "term"
//	class = "kitty"
//
//	[[events]]
//	op = "layout"
//	layout = "vsplit"
//
// Replays are deterministic: the same scenario and options always produce
// the same placements.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/forgewm/forge/pkg/errors"
	"github.com/forgewm/forge/pkg/tree"
)

// Event operations.
const (
	OpMap          = "map"
	OpUnmap        = "unmap"
	OpFloat        = "float"
	OpTile         = "tile"
	OpToggleFloat  = "toggle-float"
	OpMinimize     = "minimize"
	OpRestore      = "restore"
	OpMove         = "move"
	OpLayout       = "layout"
	OpAddWorkspace = "add-workspace"
)

// Scenario is a display description plus an event script.
type Scenario struct {
	Name       string      `toml:"name" yaml:"name" json:"name"`
	Monitors   []tree.Rect `toml:"monitors" yaml:"monitors" json:"monitors"`
	Workspaces int         `toml:"workspaces" yaml:"workspaces" json:"workspaces"`
	Events     []Event     `toml:"events" yaml:"events" json:"events"`
}

// Event is one scripted window-system event. Which fields apply depends
// on Op; unused fields are ignored.
type Event struct {
	Op        string `toml:"op" yaml:"op" json:"op"`
	Window    string `toml:"window,omitempty" yaml:"window,omitempty" json:"window,omitempty"`
	Class     string `toml:"class,omitempty" yaml:"class,omitempty" json:"class,omitempty"`
	Workspace int    `toml:"workspace,omitempty" yaml:"workspace,omitempty" json:"workspace,omitempty"`
	Monitor   int    `toml:"monitor,omitempty" yaml:"monitor,omitempty" json:"monitor,omitempty"`
	Layout    string `toml:"layout,omitempty" yaml:"layout,omitempty" json:"layout,omitempty"`
}

func (e Event) String() string {
	switch e.Op {
	case OpLayout:
		return fmt.Sprintf("%s %s on mo%dws%d", e.Op, e.Layout, e.Monitor, e.Workspace)
	case OpAddWorkspace:
		return e.Op
	case OpMap, OpMove:
		return fmt.Sprintf("%s %s to mo%dws%d", e.Op, e.Window, e.Monitor, e.Workspace)
	default:
		return fmt.Sprintf("%s %s", e.Op, e.Window)
	}
}

// Format is a scenario file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidScenario, "unsupported scenario extension %q (want .toml, .yaml or .yml)", filepath.Ext(path))
}

// Load reads, parses and validates a scenario file.
func Load(path string) (*Scenario, error) {
	s, _, err := ReadFile(path)
	return s, err
}

// ReadFile is [Load] that also returns the raw file content, for callers
// that key caches on it.
func ReadFile(path string) (*Scenario, []byte, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scenario %s", path)
		}
		return nil, nil, err
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, data, nil
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Scenario, error) {
	var s Scenario
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "parse TOML")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidScenario, "unknown field %s", undecoded[0])
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "parse YAML")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidScenario, "unknown format %q", format)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the display description and every event, tracking the
// workspace count as add-workspace events grow it.
func (s *Scenario) Validate() error {
	if len(s.Monitors) == 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "at least one monitor is required")
	}
	for i, m := range s.Monitors {
		if m.Width <= 0 || m.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidScenario, "monitors[%d]: work area %v is empty", i, m)
		}
	}
	if s.Workspaces < 1 {
		return errors.New(errors.ErrCodeInvalidScenario, "workspaces must be >= 1, got %d", s.Workspaces)
	}

	workspaces := s.Workspaces
	mapped := make(map[string]bool)
	for i, e := range s.Events {
		if err := e.validate(len(s.Monitors), workspaces, mapped); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScenario, err, "events[%d] (%s)", i, e.Op)
		}
		if e.Op == OpAddWorkspace {
			workspaces++
		}
	}
	return nil
}

func (e Event) validate(monitors, workspaces int, mapped map[string]bool) error {
	switch e.Op {
	case OpAddWorkspace:
		return nil
	case OpLayout:
		if _, err := tree.ParseLayout(e.Layout); err != nil {
			return err
		}
		return e.validatePlace(monitors, workspaces)
	case OpMap:
		if err := errors.ValidateWindowID(e.Window); err != nil {
			return err
		}
		if err := errors.ValidateClass(e.Class); err != nil {
			return err
		}
		if mapped[e.Window] {
			return fmt.Errorf("window %q is already mapped", e.Window)
		}
		mapped[e.Window] = true
		return e.validatePlace(monitors, workspaces)
	case OpUnmap, OpFloat, OpTile, OpToggleFloat, OpMinimize, OpRestore, OpMove:
		if err := errors.ValidateWindowID(e.Window); err != nil {
			return err
		}
		if !mapped[e.Window] {
			return fmt.Errorf("window %q is not mapped", e.Window)
		}
		if e.Op == OpUnmap {
			delete(mapped, e.Window)
		}
		if e.Op == OpMove {
			return e.validatePlace(monitors, workspaces)
		}
		return nil
	case "":
		return fmt.Errorf("op is required")
	}
	return fmt.Errorf("unknown op %q", e.Op)
}

func (e Event) validatePlace(monitors, workspaces int) error {
	if err := errors.ValidateIndex("monitor", e.Monitor, monitors); err != nil {
		return err
	}
	return errors.ValidateIndex("workspace", e.Workspace, workspaces)
}

// Check validates e on its own, without the mapping state a full scenario
// tracks. It is used for events that arrive one at a time, such as over
// HTTP.
func (e Event) Check() error {
	switch e.Op {
	case OpAddWorkspace:
		return nil
	case OpLayout:
		if _, err := tree.ParseLayout(e.Layout); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout")
		}
		return nil
	case OpMap:
		if err := errors.ValidateClass(e.Class); err != nil {
			return err
		}
		return errors.ValidateWindowID(e.Window)
	case OpUnmap, OpFloat, OpTile, OpToggleFloat, OpMinimize, OpRestore, OpMove:
		return errors.ValidateWindowID(e.Window)
	case "":
		return errors.New(errors.ErrCodeInvalidInput, "op is required")
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown op %q", e.Op)
}
