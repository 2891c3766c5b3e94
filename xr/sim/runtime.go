package sim

import (
	"image/draw"
	"strings"
	"sync"

	"github.com/wippyai/xr-bridge/xr"
)

// Config describes the simulated system.
type Config struct {
	RuntimeName        string
	SystemName         string
	Extensions         []string
	APILayers          []string
	FormFactors        []xr.FormFactor
	ViewConfigurations []xr.ViewConfigurationType
	ReferenceSpaces    []xr.ReferenceSpaceType
	// SwapchainFormats lists supported formats. Empty accepts any format.
	SwapchainFormats    []int64
	InteractionProfiles []string
	Views               []xr.View
	ViewWidth           uint32
	ViewHeight          uint32
	SampleCount         uint32
	DisplayPeriod       xr.Duration
	SwapchainLength     uint32

	// AutoAdvance queues synchronized, visible and focused after BeginSession.
	AutoAdvance bool
}

// DefaultConfig returns a stereo head-mounted system with the common
// controller profiles.
func DefaultConfig() Config {
	return Config{
		RuntimeName: "Simulated Runtime",
		SystemName:  "Simulated HMD",
		FormFactors: []xr.FormFactor{xr.FormFactorHeadMountedDisplay},
		ViewConfigurations: []xr.ViewConfigurationType{
			xr.ViewConfigurationTypePrimaryStereo,
			xr.ViewConfigurationTypePrimaryMono,
		},
		ReferenceSpaces: []xr.ReferenceSpaceType{
			xr.ReferenceSpaceTypeView,
			xr.ReferenceSpaceTypeLocal,
			xr.ReferenceSpaceTypeStage,
		},
		InteractionProfiles: []string{
			"/interaction_profiles/khr/simple_controller",
			"/interaction_profiles/oculus/touch_controller",
			"/interaction_profiles/valve/index_controller",
			"/interaction_profiles/htc/vive_controller",
		},
		Views: []xr.View{
			{Pose: xr.Posef{Orientation: xr.Quaternionf{W: 1}, Position: xr.Vector3f{X: -0.032, Y: 1.6}}, Fov: symmetricFov(0.785398)},
			{Pose: xr.Posef{Orientation: xr.Quaternionf{W: 1}, Position: xr.Vector3f{X: 0.032, Y: 1.6}}, Fov: symmetricFov(0.785398)},
		},
		ViewWidth:       1600,
		ViewHeight:      1600,
		SampleCount:     1,
		DisplayPeriod:   11111111,
		SwapchainLength: 3,
		AutoAdvance:     true,
	}
}

func symmetricFov(half float32) xr.Fovf {
	return xr.Fovf{AngleLeft: -half, AngleRight: half, AngleUp: half, AngleDown: -half}
}

// Runtime is an in-process xr.Runtime with scriptable state and a call log.
type Runtime struct {
	cfg Config

	calls    []string
	failures map[string]failure
	events   []xr.Event

	paths     map[string]xr.Path
	pathNames map[xr.Path]string
	nextID    uint64

	instance     xr.Instance
	system       xr.SystemID
	session      xr.Session
	sessionState xr.SessionState
	running      bool
	attached     bool
	synced       bool

	frameTime     xr.Time
	period        xr.Duration
	frameWaited   bool
	frameBegun    bool
	shouldRender  *bool
	viewFlags     xr.ViewStateFlags
	headLocation  xr.SpaceLocation
	headVelocity  xr.SpaceVelocity
	poseLocations map[string]poseState

	spaces     map[xr.Space]*space
	swapchains map[xr.Swapchain]*swapchain
	actionSets map[xr.ActionSet]*actionSet
	actions    map[xr.Action]*action

	boolStates  map[stateKey]bool
	floatStates map[stateKey]float32
	vec2States  map[stateKey]xr.Vector2f

	currentProfiles map[xr.Path]xr.Path
	suggested       map[xr.Path][]xr.ActionSuggestedBinding
	haptics         []HapticRecord
	frames          []FrameRecord

	mu sync.Mutex
}

type failure struct {
	res    xr.Result
	remain int // <0 means persistent
}

type space struct {
	refType   xr.ReferenceSpaceType
	action    xr.Action
	subaction xr.Path
}

type swapchain struct {
	images   [][]draw.Image
	info     xr.SwapchainCreateInfo
	next     uint32
	acquired int
	waited   bool
}

type actionSet struct {
	name     string
	priority uint32
}

type action struct {
	name       string
	set        xr.ActionSet
	subactions []xr.Path
	typ        xr.ActionType
}

type stateKey struct {
	action string
	path   string
}

type poseState struct {
	velocity xr.SpaceVelocity
	location xr.SpaceLocation
}

// New creates a simulated runtime.
func New(cfg Config) *Runtime {
	r := &Runtime{
		cfg:             cfg,
		failures:        make(map[string]failure),
		paths:           make(map[string]xr.Path),
		pathNames:       make(map[xr.Path]string),
		spaces:          make(map[xr.Space]*space),
		swapchains:      make(map[xr.Swapchain]*swapchain),
		actionSets:      make(map[xr.ActionSet]*actionSet),
		actions:         make(map[xr.Action]*action),
		boolStates:      make(map[stateKey]bool),
		floatStates:     make(map[stateKey]float32),
		vec2States:      make(map[stateKey]xr.Vector2f),
		currentProfiles: make(map[xr.Path]xr.Path),
		suggested:       make(map[xr.Path][]xr.ActionSuggestedBinding),
		poseLocations:   make(map[string]poseState),
		period:          cfg.DisplayPeriod,
		viewFlags: xr.ViewStateOrientationValid | xr.ViewStatePositionValid |
			xr.ViewStateOrientationTracked | xr.ViewStatePositionTracked,
		headLocation: xr.SpaceLocation{
			LocationFlags: xr.SpaceLocationOrientationValid | xr.SpaceLocationPositionValid |
				xr.SpaceLocationOrientationTracked | xr.SpaceLocationPositionTracked,
			Pose: xr.Posef{Orientation: xr.Quaternionf{W: 1}, Position: xr.Vector3f{Y: 1.6}},
		},
	}
	if r.cfg.SwapchainLength == 0 {
		r.cfg.SwapchainLength = 3
	}
	return r
}

var _ xr.Runtime = (*Runtime)(nil)

// enter records a call and returns an injected result, if any.
// Must be called with r.mu held.
func (r *Runtime) enter(name string) (xr.Result, bool) {
	r.calls = append(r.calls, name)
	f, ok := r.failures[name]
	if !ok {
		return xr.Success, false
	}
	if f.remain > 0 {
		f.remain--
		if f.remain == 0 {
			delete(r.failures, name)
		} else {
			r.failures[name] = f
		}
	}
	return f.res, true
}

func (r *Runtime) newHandle() uint64 {
	r.nextID++
	return r.nextID
}

func (r *Runtime) push(ev xr.Event) {
	r.events = append(r.events, ev)
}

func (r *Runtime) pushState(state xr.SessionState) {
	r.push(&xr.EventDataSessionStateChanged{Session: r.session, State: state, Time: r.frameTime})
}

func copyOut[T any](src []T, dst []T) (uint32, xr.Result) {
	if dst == nil {
		return uint32(len(src)), xr.Success
	}
	if len(dst) < len(src) {
		return uint32(len(src)), xr.ErrorSizeInsufficient
	}
	return uint32(copy(dst, src)), xr.Success
}

func (r *Runtime) EnumerateAPILayerProperties(dst []xr.APILayerProperties) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrEnumerateApiLayerProperties"); ok {
		return 0, res
	}

	layers := make([]xr.APILayerProperties, len(r.cfg.APILayers))
	for i, name := range r.cfg.APILayers {
		layers[i] = xr.APILayerProperties{LayerName: name, SpecVersion: xr.CurrentAPIVersion, LayerVersion: 1}
	}
	return copyOut(layers, dst)
}

func (r *Runtime) EnumerateInstanceExtensionProperties(layerName string, dst []xr.ExtensionProperties) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrEnumerateInstanceExtensionProperties"); ok {
		return 0, res
	}
	if layerName != "" {
		return 0, xr.ErrorAPILayerNotPresent
	}

	exts := make([]xr.ExtensionProperties, len(r.cfg.Extensions))
	for i, name := range r.cfg.Extensions {
		exts[i] = xr.ExtensionProperties{ExtensionName: name, ExtensionVersion: 1}
	}
	return copyOut(exts, dst)
}

func (r *Runtime) CreateInstance(info *xr.InstanceCreateInfo) (xr.Instance, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrCreateInstance"); ok {
		return 0, res
	}
	if r.instance != 0 {
		return 0, xr.ErrorLimitReached
	}
	if info.ApplicationInfo.ApplicationName == "" {
		return 0, xr.ErrorNameInvalid
	}
	for _, name := range info.EnabledExtensions {
		if !contains(r.cfg.Extensions, name) {
			return 0, xr.ErrorExtensionNotPresent
		}
	}
	r.instance = xr.Instance(r.newHandle())
	return r.instance, xr.Success
}

func (r *Runtime) DestroyInstance(instance xr.Instance) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrDestroyInstance"); ok {
		return res
	}
	if instance == 0 || instance != r.instance {
		return xr.ErrorHandleInvalid
	}
	r.instance = 0
	r.system = 0
	r.resetSession()
	r.actionSets = make(map[xr.ActionSet]*actionSet)
	r.actions = make(map[xr.Action]*action)
	r.suggested = make(map[xr.Path][]xr.ActionSuggestedBinding)
	r.events = nil
	return xr.Success
}

func (r *Runtime) GetInstanceProperties(instance xr.Instance, props *xr.InstanceProperties) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrGetInstanceProperties"); ok {
		return res
	}
	if instance != r.instance || instance == 0 {
		return xr.ErrorHandleInvalid
	}
	props.RuntimeName = r.cfg.RuntimeName
	props.RuntimeVersion = xr.MakeVersion(0, 1, 0)
	return xr.Success
}

func (r *Runtime) ResultToString(instance xr.Instance, res xr.Result) (string, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fail, ok := r.enter("xrResultToString"); ok {
		return "", fail
	}
	if instance != r.instance || instance == 0 {
		return "", xr.ErrorHandleInvalid
	}
	return res.String(), xr.Success
}

func (r *Runtime) PollEvent(instance xr.Instance) (xr.Event, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrPollEvent"); ok {
		return nil, res
	}
	if instance != r.instance || instance == 0 {
		return nil, xr.ErrorHandleInvalid
	}
	if len(r.events) == 0 {
		return nil, xr.EventUnavailable
	}
	ev := r.events[0]
	r.events = r.events[1:]
	if sc, ok := ev.(*xr.EventDataSessionStateChanged); ok && sc.Session == r.session {
		r.sessionState = sc.State
	}
	return ev, xr.Success
}

func (r *Runtime) StringToPath(instance xr.Instance, s string) (xr.Path, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrStringToPath"); ok {
		return 0, res
	}
	if instance != r.instance || instance == 0 {
		return 0, xr.ErrorHandleInvalid
	}
	if !validPath(s) {
		return 0, xr.ErrorPathFormatInvalid
	}
	return r.intern(s), xr.Success
}

func (r *Runtime) intern(s string) xr.Path {
	if p, ok := r.paths[s]; ok {
		return p
	}
	p := xr.Path(r.newHandle())
	r.paths[s] = p
	r.pathNames[p] = s
	return p
}

func validPath(s string) bool {
	if len(s) < 2 || s[0] != '/' || strings.HasSuffix(s, "/") || strings.Contains(s, "//") {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '/', c == '_', c == '-', c == '.':
		default:
			return false
		}
	}
	return true
}

func (r *Runtime) PathToString(instance xr.Instance, p xr.Path) (string, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrPathToString"); ok {
		return "", res
	}
	if instance != r.instance || instance == 0 {
		return "", xr.ErrorHandleInvalid
	}
	s, ok := r.pathNames[p]
	if !ok {
		return "", xr.ErrorPathInvalid
	}
	return s, xr.Success
}

func (r *Runtime) GetSystem(instance xr.Instance, info *xr.SystemGetInfo) (xr.SystemID, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrGetSystem"); ok {
		return 0, res
	}
	if instance != r.instance || instance == 0 {
		return 0, xr.ErrorHandleInvalid
	}
	if info.FormFactor != xr.FormFactorHeadMountedDisplay && info.FormFactor != xr.FormFactorHandheldDisplay {
		return 0, xr.ErrorFormFactorUnsupported
	}
	if !contains(r.cfg.FormFactors, info.FormFactor) {
		return 0, xr.ErrorFormFactorUnavailable
	}
	if r.system == 0 {
		r.system = xr.SystemID(r.newHandle())
	}
	return r.system, xr.Success
}

func (r *Runtime) GetSystemProperties(instance xr.Instance, system xr.SystemID, props *xr.SystemProperties) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrGetSystemProperties"); ok {
		return res
	}
	if instance != r.instance || system != r.system || system == 0 {
		return xr.ErrorSystemInvalid
	}
	props.SystemID = system
	props.SystemName = r.cfg.SystemName
	props.VendorID = 0x5157
	props.GraphicsProperties = xr.SystemGraphicsProperties{
		MaxSwapchainImageWidth:  4096,
		MaxSwapchainImageHeight: 4096,
		MaxLayerCount:           16,
	}
	props.TrackingProperties = xr.SystemTrackingProperties{OrientationTracking: true, PositionTracking: true}
	return xr.Success
}

func (r *Runtime) EnumerateViewConfigurations(instance xr.Instance, system xr.SystemID, dst []xr.ViewConfigurationType) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrEnumerateViewConfigurations"); ok {
		return 0, res
	}
	if instance != r.instance || system != r.system || system == 0 {
		return 0, xr.ErrorSystemInvalid
	}
	return copyOut(r.cfg.ViewConfigurations, dst)
}

func (r *Runtime) EnumerateViewConfigurationViews(instance xr.Instance, system xr.SystemID, typ xr.ViewConfigurationType, dst []xr.ViewConfigurationView) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrEnumerateViewConfigurationViews"); ok {
		return 0, res
	}
	if instance != r.instance || system != r.system || system == 0 {
		return 0, xr.ErrorSystemInvalid
	}
	if !contains(r.cfg.ViewConfigurations, typ) {
		return 0, xr.ErrorViewConfigurationUnsupported
	}

	views := make([]xr.ViewConfigurationView, viewCount(typ))
	for i := range views {
		views[i] = xr.ViewConfigurationView{
			RecommendedImageRectWidth:       r.cfg.ViewWidth,
			MaxImageRectWidth:               4096,
			RecommendedImageRectHeight:      r.cfg.ViewHeight,
			MaxImageRectHeight:              4096,
			RecommendedSwapchainSampleCount: r.cfg.SampleCount,
			MaxSwapchainSampleCount:         4,
		}
	}
	return copyOut(views, dst)
}

func viewCount(typ xr.ViewConfigurationType) int {
	if typ == xr.ViewConfigurationTypePrimaryMono {
		return 1
	}
	return 2
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
