package xr

import "fmt"

// Native handles. Zero is the null handle for each type.
type (
	Instance  uint64
	Session   uint64
	Space     uint64
	Swapchain uint64
	ActionSet uint64
	Action    uint64
	Path      uint64
	SystemID  uint64
)

// NullPath is the path value for "no path".
const NullPath Path = 0

// Time is a runtime timestamp in nanoseconds.
type Time int64

// Duration is a runtime interval in nanoseconds.
type Duration int64

const (
	NoDuration       Duration = 0
	InfiniteDuration Duration = 0x7fffffffffffffff
	// MinHapticDuration asks for the shortest pulse the device supports.
	MinHapticDuration Duration = -1
)

// FrequencyUnspecified lets the runtime pick a haptic frequency.
const FrequencyUnspecified float32 = 0

// Version packs major.minor.patch as 16.16.32 bits.
type Version uint64

// MakeVersion builds a packed version number.
func MakeVersion(major, minor, patch uint32) Version {
	return Version(uint64(major&0xffff)<<48 | uint64(minor&0xffff)<<32 | uint64(patch))
}

// CurrentAPIVersion is the API version requested at instance creation.
var CurrentAPIVersion = MakeVersion(1, 0, 34)

func (v Version) Major() uint32 { return uint32(v>>48) & 0xffff }
func (v Version) Minor() uint32 { return uint32(v>>32) & 0xffff }
func (v Version) Patch() uint32 { return uint32(v) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

type FormFactor int32

const (
	FormFactorHeadMountedDisplay FormFactor = 1
	FormFactorHandheldDisplay    FormFactor = 2
)

func (f FormFactor) String() string {
	switch f {
	case FormFactorHeadMountedDisplay:
		return "XR_FORM_FACTOR_HEAD_MOUNTED_DISPLAY"
	case FormFactorHandheldDisplay:
		return "XR_FORM_FACTOR_HANDHELD_DISPLAY"
	}
	return fmt.Sprintf("FormFactor(%d)", int32(f))
}

type ViewConfigurationType int32

const (
	ViewConfigurationTypePrimaryMono   ViewConfigurationType = 1
	ViewConfigurationTypePrimaryStereo ViewConfigurationType = 2
)

func (v ViewConfigurationType) String() string {
	switch v {
	case ViewConfigurationTypePrimaryMono:
		return "XR_VIEW_CONFIGURATION_TYPE_PRIMARY_MONO"
	case ViewConfigurationTypePrimaryStereo:
		return "XR_VIEW_CONFIGURATION_TYPE_PRIMARY_STEREO"
	}
	return fmt.Sprintf("ViewConfigurationType(%d)", int32(v))
}

type ReferenceSpaceType int32

const (
	ReferenceSpaceTypeView  ReferenceSpaceType = 1
	ReferenceSpaceTypeLocal ReferenceSpaceType = 2
	ReferenceSpaceTypeStage ReferenceSpaceType = 3
)

func (r ReferenceSpaceType) String() string {
	switch r {
	case ReferenceSpaceTypeView:
		return "XR_REFERENCE_SPACE_TYPE_VIEW"
	case ReferenceSpaceTypeLocal:
		return "XR_REFERENCE_SPACE_TYPE_LOCAL"
	case ReferenceSpaceTypeStage:
		return "XR_REFERENCE_SPACE_TYPE_STAGE"
	}
	return fmt.Sprintf("ReferenceSpaceType(%d)", int32(r))
}

type EnvironmentBlendMode int32

const (
	EnvironmentBlendModeOpaque     EnvironmentBlendMode = 1
	EnvironmentBlendModeAdditive   EnvironmentBlendMode = 2
	EnvironmentBlendModeAlphaBlend EnvironmentBlendMode = 3
)

type SessionState int32

const (
	SessionStateUnknown      SessionState = 0
	SessionStateIdle         SessionState = 1
	SessionStateReady        SessionState = 2
	SessionStateSynchronized SessionState = 3
	SessionStateVisible      SessionState = 4
	SessionStateFocused      SessionState = 5
	SessionStateStopping     SessionState = 6
	SessionStateLossPending  SessionState = 7
	SessionStateExiting      SessionState = 8
	sessionStateCount        SessionState = 9
)

var sessionStateNames = [...]string{
	"XR_SESSION_STATE_UNKNOWN",
	"XR_SESSION_STATE_IDLE",
	"XR_SESSION_STATE_READY",
	"XR_SESSION_STATE_SYNCHRONIZED",
	"XR_SESSION_STATE_VISIBLE",
	"XR_SESSION_STATE_FOCUSED",
	"XR_SESSION_STATE_STOPPING",
	"XR_SESSION_STATE_LOSS_PENDING",
	"XR_SESSION_STATE_EXITING",
}

// Valid reports whether s is a state known to this package.
func (s SessionState) Valid() bool {
	return s >= SessionStateUnknown && s < sessionStateCount
}

func (s SessionState) String() string {
	if s.Valid() {
		return sessionStateNames[s]
	}
	return fmt.Sprintf("SessionState(%d)", int32(s))
}

type ActionType int32

const (
	ActionTypeBooleanInput    ActionType = 1
	ActionTypeFloatInput      ActionType = 2
	ActionTypeVector2fInput   ActionType = 3
	ActionTypePoseInput       ActionType = 4
	ActionTypeVibrationOutput ActionType = 100
)

func (a ActionType) String() string {
	switch a {
	case ActionTypeBooleanInput:
		return "XR_ACTION_TYPE_BOOLEAN_INPUT"
	case ActionTypeFloatInput:
		return "XR_ACTION_TYPE_FLOAT_INPUT"
	case ActionTypeVector2fInput:
		return "XR_ACTION_TYPE_VECTOR2F_INPUT"
	case ActionTypePoseInput:
		return "XR_ACTION_TYPE_POSE_INPUT"
	case ActionTypeVibrationOutput:
		return "XR_ACTION_TYPE_VIBRATION_OUTPUT"
	}
	return fmt.Sprintf("ActionType(%d)", int32(a))
}

type ViewStateFlags uint64

const (
	ViewStateOrientationValid   ViewStateFlags = 0x1
	ViewStatePositionValid      ViewStateFlags = 0x2
	ViewStateOrientationTracked ViewStateFlags = 0x4
	ViewStatePositionTracked    ViewStateFlags = 0x8
)

type SpaceLocationFlags uint64

const (
	SpaceLocationOrientationValid   SpaceLocationFlags = 0x1
	SpaceLocationPositionValid      SpaceLocationFlags = 0x2
	SpaceLocationOrientationTracked SpaceLocationFlags = 0x4
	SpaceLocationPositionTracked    SpaceLocationFlags = 0x8
)

type SpaceVelocityFlags uint64

const (
	SpaceVelocityLinearValid  SpaceVelocityFlags = 0x1
	SpaceVelocityAngularValid SpaceVelocityFlags = 0x2
)

type CompositionLayerFlags uint64

const (
	CompositionLayerCorrectChromaticAberration CompositionLayerFlags = 0x1
	CompositionLayerBlendTextureSourceAlpha    CompositionLayerFlags = 0x2
	CompositionLayerUnpremultipliedAlpha       CompositionLayerFlags = 0x4
)

type SwapchainUsageFlags uint64

const (
	SwapchainUsageColorAttachment        SwapchainUsageFlags = 0x1
	SwapchainUsageDepthStencilAttachment SwapchainUsageFlags = 0x2
	SwapchainUsageTransferSrc            SwapchainUsageFlags = 0x8
	SwapchainUsageTransferDst            SwapchainUsageFlags = 0x10
	SwapchainUsageSampled                SwapchainUsageFlags = 0x20
)

type Vector2f struct {
	X, Y float32
}

type Vector3f struct {
	X, Y, Z float32
}

type Quaternionf struct {
	X, Y, Z, W float32
}

type Posef struct {
	Orientation Quaternionf
	Position    Vector3f
}

// IdentityPose is the pose used for reference and action spaces.
var IdentityPose = Posef{Orientation: Quaternionf{W: 1}}

type Fovf struct {
	AngleLeft, AngleRight, AngleUp, AngleDown float32
}

type Offset2Di struct {
	X, Y int32
}

type Extent2Di struct {
	Width, Height int32
}

type Rect2Di struct {
	Offset Offset2Di
	Extent Extent2Di
}
