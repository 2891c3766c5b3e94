package xr

import "context"

// Runtime is the native API surface the bridge drives. Every method maps to
// one runtime entry point. Enumerate* methods follow the two-call idiom: a
// nil dst returns the required count, otherwise they fill dst and return the
// written count (ErrorSizeInsufficient when dst is too small).
type Runtime interface {
	EnumerateAPILayerProperties(dst []APILayerProperties) (uint32, Result)
	EnumerateInstanceExtensionProperties(layerName string, dst []ExtensionProperties) (uint32, Result)
	CreateInstance(info *InstanceCreateInfo) (Instance, Result)
	DestroyInstance(instance Instance) Result
	GetInstanceProperties(instance Instance, props *InstanceProperties) Result
	ResultToString(instance Instance, res Result) (string, Result)
	PollEvent(instance Instance) (Event, Result)
	StringToPath(instance Instance, s string) (Path, Result)
	PathToString(instance Instance, p Path) (string, Result)

	GetSystem(instance Instance, info *SystemGetInfo) (SystemID, Result)
	GetSystemProperties(instance Instance, system SystemID, props *SystemProperties) Result
	EnumerateViewConfigurations(instance Instance, system SystemID, dst []ViewConfigurationType) (uint32, Result)
	EnumerateViewConfigurationViews(instance Instance, system SystemID, typ ViewConfigurationType, dst []ViewConfigurationView) (uint32, Result)

	CreateSession(instance Instance, info *SessionCreateInfo) (Session, Result)
	DestroySession(session Session) Result
	BeginSession(session Session, info *SessionBeginInfo) Result
	EndSession(session Session) Result
	RequestExitSession(session Session) Result

	EnumerateReferenceSpaces(session Session, dst []ReferenceSpaceType) (uint32, Result)
	CreateReferenceSpace(session Session, info *ReferenceSpaceCreateInfo) (Space, Result)
	CreateActionSpace(session Session, info *ActionSpaceCreateInfo) (Space, Result)
	LocateSpace(space, base Space, t Time, loc *SpaceLocation) Result
	DestroySpace(space Space) Result

	EnumerateSwapchainFormats(session Session, dst []int64) (uint32, Result)
	CreateSwapchain(session Session, info *SwapchainCreateInfo) (Swapchain, Result)
	DestroySwapchain(swapchain Swapchain) Result
	EnumerateSwapchainImages(swapchain Swapchain, dst []SwapchainImage) (uint32, Result)
	AcquireSwapchainImage(swapchain Swapchain) (uint32, Result)
	WaitSwapchainImage(ctx context.Context, swapchain Swapchain, info *SwapchainImageWaitInfo) Result
	ReleaseSwapchainImage(swapchain Swapchain) Result

	WaitFrame(ctx context.Context, session Session, info *FrameWaitInfo, state *FrameState) Result
	BeginFrame(session Session) Result
	EndFrame(session Session, info *FrameEndInfo) Result
	LocateViews(session Session, info *ViewLocateInfo, state *ViewState, dst []View) (uint32, Result)

	CreateActionSet(instance Instance, info *ActionSetCreateInfo) (ActionSet, Result)
	DestroyActionSet(set ActionSet) Result
	CreateAction(set ActionSet, info *ActionCreateInfo) (Action, Result)
	DestroyAction(action Action) Result
	SuggestInteractionProfileBindings(instance Instance, info *InteractionProfileSuggestedBinding) Result
	AttachSessionActionSets(session Session, info *SessionActionSetsAttachInfo) Result
	GetCurrentInteractionProfile(session Session, topLevelUserPath Path, state *InteractionProfileState) Result
	SyncActions(session Session, info *ActionsSyncInfo) Result
	GetActionStateBoolean(session Session, info *ActionStateGetInfo, state *ActionStateBoolean) Result
	GetActionStateFloat(session Session, info *ActionStateGetInfo, state *ActionStateFloat) Result
	GetActionStateVector2f(session Session, info *ActionStateGetInfo, state *ActionStateVector2f) Result
	GetActionStatePose(session Session, info *ActionStateGetInfo, state *ActionStatePose) Result
	ApplyHapticFeedback(session Session, info *HapticActionInfo, vibration *HapticVibration) Result
	StopHapticFeedback(session Session, info *HapticActionInfo) Result
}
