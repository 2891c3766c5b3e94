package openxr

import (
	"github.com/wippyai/xr-bridge/handle"
	"github.com/wippyai/xr-bridge/xr"
)

// Host-visible identifiers. The zero value of each is "none".
type (
	TrackerID   handle.Handle
	ActionSetID handle.Handle
	ActionID    handle.Handle
	ProfileID   handle.Handle
)

func (id TrackerID) String() string   { return handle.Handle(id).String() }
func (id ActionSetID) String() string { return handle.Handle(id).String() }
func (id ActionID) String() string    { return handle.Handle(id).String() }
func (id ProfileID) String() string   { return handle.Handle(id).String() }

// ActionKind is the typed kind of an action.
type ActionKind int

const (
	ActionBool ActionKind = iota + 1
	ActionFloat
	ActionVector2
	ActionPose
	ActionHaptic
)

func (k ActionKind) String() string {
	switch k {
	case ActionBool:
		return "bool"
	case ActionFloat:
		return "float"
	case ActionVector2:
		return "vector2"
	case ActionPose:
		return "pose"
	case ActionHaptic:
		return "haptic"
	}
	return "invalid"
}

// ParseActionKind maps a kind name to an ActionKind.
func ParseActionKind(s string) (ActionKind, bool) {
	switch s {
	case "bool", "boolean":
		return ActionBool, true
	case "float", "scalar":
		return ActionFloat, true
	case "vector2", "vec2":
		return ActionVector2, true
	case "pose":
		return ActionPose, true
	case "haptic", "vibration":
		return ActionHaptic, true
	}
	return 0, false
}

func (k ActionKind) xrType() xr.ActionType {
	switch k {
	case ActionBool:
		return xr.ActionTypeBooleanInput
	case ActionFloat:
		return xr.ActionTypeFloatInput
	case ActionVector2:
		return xr.ActionTypeVector2fInput
	case ActionPose:
		return xr.ActionTypePoseInput
	case ActionHaptic:
		return xr.ActionTypeVibrationOutput
	}
	return 0
}
