// Package cli replays recorded editor sessions without a browser host.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"strategymap/application/editor"
	"strategymap/domain/core/aggregates"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
	pkgerrors "strategymap/pkg/errors"
	"strategymap/pkg/utils"
)

// Step operations
const (
	OpAddRoot  = "addRoot"
	OpAddChild = "addChild"
	OpDown     = "down"
	OpMove     = "move"
	OpUp       = "up"
	OpKey      = "key"
	OpMode     = "mode"
	OpUpdate   = "update"
	OpViewport = "viewport"
)

// Script is a recorded editor session
type Script struct {
	ClientID string  `json:"clientId" validate:"required,max=128"`
	Width    float64 `json:"width" validate:"gte=0"`
	Height   float64 `json:"height" validate:"gte=0"`
	Steps    []Step  `json:"steps" validate:"dive"`
}

// Step is one input of a session. Node references are either a node id or
// "$n", the n-th node created by this script.
type Step struct {
	Op      string      `json:"op" validate:"required,oneof=addRoot addChild down move up key mode update viewport"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Button  string      `json:"button" validate:"omitempty,oneof=primary middle secondary"`
	Shift   bool        `json:"shift"`
	Target  string      `json:"target"`
	Parent  string      `json:"parent"`
	Key     string      `json:"key"`
	Focused bool        `json:"focused"`
	Mode    string      `json:"mode" validate:"omitempty,oneof=select pan"`
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Scale   float64     `json:"scale" validate:"gte=0"`
}

// ParseScript decodes and validates a script
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, pkgerrors.NewValidationError("invalid script: " + err.Error())
	}
	if err := utils.ValidateStruct(s); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	return &s, nil
}

// Report summarises a replay
type Report struct {
	Steps    int      `json:"steps"`
	Created  []string `json:"created"`
	Skipped  int      `json:"skipped"`
	Deleted  int      `json:"deleted"`
	Selected []string `json:"selected"`
	Nodes    int      `json:"nodes"`
}

// Runner feeds script steps into an editor. Move and release samples go
// through source, the same way a host window delivers them.
type Runner struct {
	editor  *editor.Editor
	source  *editor.Broadcaster
	created []valueobjects.NodeID
	report  Report
	logger  *zap.Logger
}

// NewRunner creates a runner. source must be the PointerSource the editor
// was built with.
func NewRunner(ed *editor.Editor, source *editor.Broadcaster, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{editor: ed, source: source, logger: logger}
}

// Run executes every step in order and stops at the first failing one
func (r *Runner) Run(script *Script) (Report, error) {
	for i, step := range script.Steps {
		if err := r.step(step); err != nil {
			return r.finish(), fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		r.report.Steps++
	}
	return r.finish(), nil
}

func (r *Runner) finish() Report {
	rep := r.report
	rep.Created = make([]string, len(r.created))
	for i, id := range r.created {
		rep.Created[i] = id.String()
	}
	rep.Selected = make([]string, 0, r.editor.Selection().Len())
	for _, id := range r.editor.Selection().IDs() {
		rep.Selected = append(rep.Selected, id.String())
	}
	rep.Nodes = r.editor.Store().Len()
	return rep
}

func (r *Runner) step(s Step) error {
	switch s.Op {
	case OpAddRoot:
		node, ok, err := r.editor.AddRoot()
		return r.recordCreate(node.ID(), ok, err)

	case OpAddChild:
		parent, err := r.ref(s.Parent)
		if err != nil {
			return err
		}
		node, ok, err := r.editor.AddChild(parent)
		return r.recordCreate(node.ID(), ok, err)

	case OpDown:
		ev, err := r.event(s)
		if err != nil {
			return err
		}
		if s.Target == "" {
			ev = r.editor.Resolve(ev)
		}
		r.editor.PointerDown(ev)

	case OpMove:
		ev, err := r.event(s)
		if err != nil {
			return err
		}
		r.source.Move(ev)

	case OpUp:
		ev, err := r.event(s)
		if err != nil {
			return err
		}
		r.source.Up(ev)

	case OpKey:
		before := r.editor.Store().Len()
		r.editor.KeyDown(s.Key, s.Focused)
		r.report.Deleted += before - r.editor.Store().Len()

	case OpMode:
		if s.Mode == "pan" {
			r.editor.SetMode(editor.ModePan)
		} else {
			r.editor.SetMode(editor.ModeSelect)
		}

	case OpUpdate:
		id, err := r.ref(s.Target)
		if err != nil {
			return err
		}
		return r.editor.Update(id, aggregates.Field(s.Field), s.Value)

	case OpViewport:
		v := r.editor.Viewport()
		v.Pan = geometry.Pt(s.X, s.Y)
		if s.Scale > 0 {
			v.Scale = s.Scale
		}
		r.editor.SetViewport(v)

	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}

func (r *Runner) recordCreate(id valueobjects.NodeID, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		r.report.Skipped++
		r.logger.Debug("Node ceiling reached, step skipped")
		return nil
	}
	r.created = append(r.created, id)
	return nil
}

func (r *Runner) event(s Step) (editor.PointerEvent, error) {
	ev := editor.PointerEvent{
		Screen: geometry.Pt(s.X, s.Y),
		Button: parseButton(s.Button),
		Shift:  s.Shift,
	}
	if s.Target != "" {
		id, err := r.ref(s.Target)
		if err != nil {
			return ev, err
		}
		ev.Target = id
	}
	return ev, nil
}

// ref resolves "$n" or a literal node id
func (r *Runner) ref(s string) (valueobjects.NodeID, error) {
	if strings.HasPrefix(s, "$") {
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 || n >= len(r.created) {
			return valueobjects.NodeID{}, pkgerrors.NewValidationError(fmt.Sprintf("no created node %q", s))
		}
		return r.created[n], nil
	}
	return valueobjects.NewNodeIDFromString(s)
}

func parseButton(s string) editor.Button {
	switch s {
	case "middle":
		return editor.ButtonMiddle
	case "secondary":
		return editor.ButtonSecondary
	default:
		return editor.ButtonPrimary
	}
}
