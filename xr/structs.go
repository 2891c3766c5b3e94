package xr

type ExtensionProperties struct {
	ExtensionName    string
	ExtensionVersion uint32
}

type APILayerProperties struct {
	LayerName    string
	Description  string
	SpecVersion  Version
	LayerVersion uint32
}

type ApplicationInfo struct {
	ApplicationName    string
	EngineName         string
	ApplicationVersion uint32
	EngineVersion      uint32
	APIVersion         Version
}

type InstanceCreateInfo struct {
	Next              *Chain
	EnabledAPILayers  []string
	EnabledExtensions []string
	ApplicationInfo   ApplicationInfo
}

type InstanceProperties struct {
	RuntimeName    string
	RuntimeVersion Version
}

type SystemGetInfo struct {
	FormFactor FormFactor
}

type SystemGraphicsProperties struct {
	MaxSwapchainImageHeight uint32
	MaxSwapchainImageWidth  uint32
	MaxLayerCount           uint32
}

type SystemTrackingProperties struct {
	OrientationTracking bool
	PositionTracking    bool
}

type SystemProperties struct {
	Next               *Chain
	SystemName         string
	SystemID           SystemID
	VendorID           uint32
	GraphicsProperties SystemGraphicsProperties
	TrackingProperties SystemTrackingProperties
}

type ViewConfigurationView struct {
	RecommendedImageRectWidth       uint32
	MaxImageRectWidth               uint32
	RecommendedImageRectHeight      uint32
	MaxImageRectHeight              uint32
	RecommendedSwapchainSampleCount uint32
	MaxSwapchainSampleCount         uint32
}

type SessionCreateInfo struct {
	Next     *Chain
	SystemID SystemID
}

type SessionBeginInfo struct {
	PrimaryViewConfigurationType ViewConfigurationType
}

type ReferenceSpaceCreateInfo struct {
	ReferenceSpaceType   ReferenceSpaceType
	PoseInReferenceSpace Posef
}

type ActionSpaceCreateInfo struct {
	Action            Action
	SubactionPath     Path
	PoseInActionSpace Posef
}

// SpaceVelocity is filled by LocateSpace when SpaceLocation.Velocity is non-nil.
type SpaceVelocity struct {
	VelocityFlags   SpaceVelocityFlags
	LinearVelocity  Vector3f
	AngularVelocity Vector3f
}

type SpaceLocation struct {
	Velocity      *SpaceVelocity
	LocationFlags SpaceLocationFlags
	Pose          Posef
}

type SwapchainCreateInfo struct {
	Next        *Chain
	UsageFlags  SwapchainUsageFlags
	Format      int64
	SampleCount uint32
	Width       uint32
	Height      uint32
	FaceCount   uint32
	ArraySize   uint32
	MipCount    uint32
}

// SwapchainImage carries the graphics-API specific image object
// (a Vulkan image handle, a GL texture name, or a CPU image).
type SwapchainImage struct {
	Image any
}

type SwapchainImageWaitInfo struct {
	Timeout Duration
}

type SwapchainSubImage struct {
	Swapchain       Swapchain
	ImageRect       Rect2Di
	ImageArrayIndex uint32
}

type FrameWaitInfo struct{}

type FrameState struct {
	PredictedDisplayTime   Time
	PredictedDisplayPeriod Duration
	ShouldRender           bool
}

type ViewLocateInfo struct {
	ViewConfigurationType ViewConfigurationType
	DisplayTime           Time
	Space                 Space
}

type ViewState struct {
	ViewStateFlags ViewStateFlags
}

type View struct {
	Pose Posef
	Fov  Fovf
}

type CompositionLayerProjectionView struct {
	Pose     Posef
	Fov      Fovf
	SubImage SwapchainSubImage
}

// CompositionLayer is any layer submitted with EndFrame.
type CompositionLayer interface {
	LayerSpace() Space
}

type CompositionLayerProjection struct {
	Views      []CompositionLayerProjectionView
	LayerFlags CompositionLayerFlags
	Space      Space
}

func (l *CompositionLayerProjection) LayerSpace() Space { return l.Space }

type CompositionLayerQuad struct {
	SubImage   SwapchainSubImage
	Pose       Posef
	Size       Vector2f
	LayerFlags CompositionLayerFlags
	Space      Space
}

func (l *CompositionLayerQuad) LayerSpace() Space { return l.Space }

type FrameEndInfo struct {
	Layers               []CompositionLayer
	DisplayTime          Time
	EnvironmentBlendMode EnvironmentBlendMode
}

type ActionSetCreateInfo struct {
	ActionSetName          string
	LocalizedActionSetName string
	Priority               uint32
}

type ActionCreateInfo struct {
	ActionName          string
	LocalizedActionName string
	SubactionPaths      []Path
	ActionType          ActionType
}

type ActionSuggestedBinding struct {
	Action  Action
	Binding Path
}

type InteractionProfileSuggestedBinding struct {
	SuggestedBindings  []ActionSuggestedBinding
	InteractionProfile Path
}

type SessionActionSetsAttachInfo struct {
	ActionSets []ActionSet
}

type ActiveActionSet struct {
	ActionSet     ActionSet
	SubactionPath Path
}

type ActionsSyncInfo struct {
	ActiveActionSets []ActiveActionSet
}

type ActionStateGetInfo struct {
	Action        Action
	SubactionPath Path
}

type ActionStateBoolean struct {
	LastChangeTime       Time
	CurrentState         bool
	ChangedSinceLastSync bool
	IsActive             bool
}

type ActionStateFloat struct {
	LastChangeTime       Time
	CurrentState         float32
	ChangedSinceLastSync bool
	IsActive             bool
}

type ActionStateVector2f struct {
	CurrentState         Vector2f
	LastChangeTime       Time
	ChangedSinceLastSync bool
	IsActive             bool
}

type ActionStatePose struct {
	IsActive bool
}

type HapticActionInfo struct {
	Action        Action
	SubactionPath Path
}

type HapticVibration struct {
	Duration  Duration
	Frequency float32
	Amplitude float32
}

type InteractionProfileState struct {
	InteractionProfile Path
}
