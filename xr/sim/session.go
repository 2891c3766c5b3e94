package sim

import (
	"context"
	"image"
	"image/draw"

	"github.com/wippyai/xr-bridge/xr"
)

// resetSession drops all session-scoped state. Must be called with r.mu held.
func (r *Runtime) resetSession() {
	r.session = 0
	r.sessionState = xr.SessionStateUnknown
	r.running = false
	r.attached = false
	r.synced = false
	r.frameWaited = false
	r.frameBegun = false
	r.spaces = make(map[xr.Space]*space)
	r.swapchains = make(map[xr.Swapchain]*swapchain)
	r.currentProfiles = make(map[xr.Path]xr.Path)
}

func (r *Runtime) CreateSession(instance xr.Instance, info *xr.SessionCreateInfo) (xr.Session, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrCreateSession"); ok {
		return 0, res
	}
	if instance != r.instance || instance == 0 {
		return 0, xr.ErrorHandleInvalid
	}
	if info.SystemID != r.system || r.system == 0 {
		return 0, xr.ErrorSystemInvalid
	}
	if r.session != 0 {
		return 0, xr.ErrorLimitReached
	}
	r.session = xr.Session(r.newHandle())
	r.pushState(xr.SessionStateIdle)
	r.pushState(xr.SessionStateReady)
	return r.session, xr.Success
}

func (r *Runtime) DestroySession(session xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrDestroySession"); ok {
		return res
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	r.resetSession()
	return xr.Success
}

func (r *Runtime) BeginSession(session xr.Session, info *xr.SessionBeginInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrBeginSession"); ok {
		return res
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	if r.running {
		return xr.ErrorSessionRunning
	}
	if r.sessionState != xr.SessionStateReady {
		return xr.ErrorSessionNotReady
	}
	if !contains(r.cfg.ViewConfigurations, info.PrimaryViewConfigurationType) {
		return xr.ErrorViewConfigurationUnsupported
	}
	r.running = true
	if r.cfg.AutoAdvance {
		r.pushState(xr.SessionStateSynchronized)
		r.pushState(xr.SessionStateVisible)
		r.pushState(xr.SessionStateFocused)
	}
	return xr.Success
}

func (r *Runtime) EndSession(session xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrEndSession"); ok {
		return res
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	if !r.running {
		return xr.ErrorSessionNotRunning
	}
	if r.sessionState != xr.SessionStateStopping {
		return xr.ErrorSessionNotStopping
	}
	r.running = false
	r.frameWaited = false
	r.frameBegun = false
	r.pushState(xr.SessionStateIdle)
	r.pushState(xr.SessionStateExiting)
	return xr.Success
}

func (r *Runtime) RequestExitSession(session xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrRequestExitSession"); ok {
		return res
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	if !r.running {
		return xr.ErrorSessionNotRunning
	}
	if r.sessionState == xr.SessionStateFocused {
		r.pushState(xr.SessionStateVisible)
	}
	if r.sessionState >= xr.SessionStateVisible {
		r.pushState(xr.SessionStateSynchronized)
	}
	r.pushState(xr.SessionStateStopping)
	return xr.Success
}

func (r *Runtime) EnumerateReferenceSpaces(session xr.Session, dst []xr.ReferenceSpaceType) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrEnumerateReferenceSpaces"); ok {
		return 0, res
	}
	if session == 0 || session != r.session {
		return 0, xr.ErrorHandleInvalid
	}
	return copyOut(r.cfg.ReferenceSpaces, dst)
}

func (r *Runtime) CreateReferenceSpace(session xr.Session, info *xr.ReferenceSpaceCreateInfo) (xr.Space, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrCreateReferenceSpace"); ok {
		return 0, res
	}
	if session == 0 || session != r.session {
		return 0, xr.ErrorHandleInvalid
	}
	if !contains(r.cfg.ReferenceSpaces, info.ReferenceSpaceType) {
		return 0, xr.ErrorReferenceSpaceUnsupported
	}
	s := xr.Space(r.newHandle())
	r.spaces[s] = &space{refType: info.ReferenceSpaceType}
	return s, xr.Success
}

func (r *Runtime) CreateActionSpace(session xr.Session, info *xr.ActionSpaceCreateInfo) (xr.Space, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrCreateActionSpace"); ok {
		return 0, res
	}
	if session == 0 || session != r.session {
		return 0, xr.ErrorHandleInvalid
	}
	a, ok := r.actions[info.Action]
	if !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if a.typ != xr.ActionTypePoseInput {
		return 0, xr.ErrorActionTypeMismatch
	}
	if info.SubactionPath != xr.NullPath && !contains(a.subactions, info.SubactionPath) {
		return 0, xr.ErrorPathUnsupported
	}
	s := xr.Space(r.newHandle())
	r.spaces[s] = &space{action: info.Action, subaction: info.SubactionPath}
	return s, xr.Success
}

func (r *Runtime) LocateSpace(sp, base xr.Space, t xr.Time, loc *xr.SpaceLocation) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrLocateSpace"); ok {
		return res
	}
	target, ok := r.spaces[sp]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if _, ok := r.spaces[base]; !ok {
		return xr.ErrorHandleInvalid
	}
	if t <= 0 {
		return xr.ErrorTimeInvalid
	}

	var state poseState
	switch {
	case target.action != 0:
		a := r.actions[target.action]
		if a == nil {
			return xr.ErrorHandleInvalid
		}
		if s, ok := r.poseLocations[a.name+"|"+r.pathNames[target.subaction]]; ok && r.synced {
			state = s
		}
	case target.refType == xr.ReferenceSpaceTypeView:
		state = poseState{location: r.headLocation, velocity: r.headVelocity}
	default:
		state.location = xr.SpaceLocation{
			LocationFlags: xr.SpaceLocationOrientationValid | xr.SpaceLocationPositionValid |
				xr.SpaceLocationOrientationTracked | xr.SpaceLocationPositionTracked,
			Pose: xr.IdentityPose,
		}
	}

	loc.LocationFlags = state.location.LocationFlags
	loc.Pose = state.location.Pose
	if loc.Velocity != nil {
		*loc.Velocity = state.velocity
	}
	return xr.Success
}

func (r *Runtime) DestroySpace(sp xr.Space) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrDestroySpace"); ok {
		return res
	}
	if _, ok := r.spaces[sp]; !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.spaces, sp)
	return xr.Success
}

func (r *Runtime) EnumerateSwapchainFormats(session xr.Session, dst []int64) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrEnumerateSwapchainFormats"); ok {
		return 0, res
	}
	if session == 0 || session != r.session {
		return 0, xr.ErrorHandleInvalid
	}
	return copyOut(r.cfg.SwapchainFormats, dst)
}

func (r *Runtime) CreateSwapchain(session xr.Session, info *xr.SwapchainCreateInfo) (xr.Swapchain, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrCreateSwapchain"); ok {
		return 0, res
	}
	if session == 0 || session != r.session {
		return 0, xr.ErrorHandleInvalid
	}
	if len(r.cfg.SwapchainFormats) > 0 && !contains(r.cfg.SwapchainFormats, info.Format) {
		return 0, xr.ErrorSwapchainFormatUnsupported
	}
	if info.Width == 0 || info.Height == 0 || info.ArraySize == 0 || info.FaceCount != 1 {
		return 0, xr.ErrorValidationFailure
	}

	sc := &swapchain{info: *info, acquired: -1}
	sc.images = make([][]draw.Image, r.cfg.SwapchainLength)
	for i := range sc.images {
		layers := make([]draw.Image, info.ArraySize)
		for l := range layers {
			layers[l] = image.NewRGBA(image.Rect(0, 0, int(info.Width), int(info.Height)))
		}
		sc.images[i] = layers
	}
	h := xr.Swapchain(r.newHandle())
	r.swapchains[h] = sc
	return h, xr.Success
}

func (r *Runtime) DestroySwapchain(sc xr.Swapchain) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrDestroySwapchain"); ok {
		return res
	}
	if _, ok := r.swapchains[sc]; !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.swapchains, sc)
	return xr.Success
}

// EnumerateSwapchainImages returns one []draw.Image (one entry per array
// layer) per swapchain image.
func (r *Runtime) EnumerateSwapchainImages(sc xr.Swapchain, dst []xr.SwapchainImage) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrEnumerateSwapchainImages"); ok {
		return 0, res
	}
	s, ok := r.swapchains[sc]
	if !ok {
		return 0, xr.ErrorHandleInvalid
	}
	images := make([]xr.SwapchainImage, len(s.images))
	for i, layers := range s.images {
		images[i] = xr.SwapchainImage{Image: layers}
	}
	return copyOut(images, dst)
}

func (r *Runtime) AcquireSwapchainImage(sc xr.Swapchain) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrAcquireSwapchainImage"); ok {
		return 0, res
	}
	s, ok := r.swapchains[sc]
	if !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if s.acquired >= 0 {
		return 0, xr.ErrorCallOrderInvalid
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	s.acquired = int(idx)
	s.waited = false
	return idx, xr.Success
}

func (r *Runtime) WaitSwapchainImage(ctx context.Context, sc xr.Swapchain, info *xr.SwapchainImageWaitInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrWaitSwapchainImage"); ok {
		return res
	}
	if ctx.Err() != nil {
		return xr.TimeoutExpired
	}
	s, ok := r.swapchains[sc]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if s.acquired < 0 {
		return xr.ErrorCallOrderInvalid
	}
	s.waited = true
	return xr.Success
}

func (r *Runtime) ReleaseSwapchainImage(sc xr.Swapchain) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrReleaseSwapchainImage"); ok {
		return res
	}
	s, ok := r.swapchains[sc]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if s.acquired < 0 {
		return xr.ErrorCallOrderInvalid
	}
	s.acquired = -1
	s.waited = false
	return xr.Success
}

func (r *Runtime) WaitFrame(ctx context.Context, session xr.Session, _ *xr.FrameWaitInfo, state *xr.FrameState) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrWaitFrame"); ok {
		return res
	}
	if err := ctx.Err(); err != nil {
		return xr.ErrorRuntimeFailure
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	if !r.running {
		return xr.ErrorSessionNotRunning
	}

	step := r.period
	if step <= 0 {
		step = 11111111
	}
	r.frameTime += xr.Time(step)
	r.frameWaited = true

	state.PredictedDisplayTime = r.frameTime
	state.PredictedDisplayPeriod = r.period
	if r.shouldRender != nil {
		state.ShouldRender = *r.shouldRender
	} else {
		state.ShouldRender = r.sessionState == xr.SessionStateVisible || r.sessionState == xr.SessionStateFocused
	}
	return xr.Success
}

func (r *Runtime) BeginFrame(session xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrBeginFrame"); ok {
		return res
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	if !r.frameWaited {
		return xr.ErrorCallOrderInvalid
	}
	discarded := r.frameBegun
	r.frameWaited = false
	r.frameBegun = true
	if discarded {
		return xr.FrameDiscarded
	}
	return xr.Success
}

func (r *Runtime) EndFrame(session xr.Session, info *xr.FrameEndInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrEndFrame"); ok {
		return res
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	if !r.frameBegun {
		return xr.ErrorCallOrderInvalid
	}
	if info.DisplayTime <= 0 {
		return xr.ErrorTimeInvalid
	}
	if info.EnvironmentBlendMode != xr.EnvironmentBlendModeOpaque {
		return xr.ErrorEnvironmentBlendModeUnsupported
	}
	for _, layer := range info.Layers {
		if proj, ok := layer.(*xr.CompositionLayerProjection); ok {
			for _, v := range proj.Views {
				sc, ok := r.swapchains[v.SubImage.Swapchain]
				if !ok || sc.acquired >= 0 {
					return xr.ErrorLayerInvalid
				}
			}
		}
	}
	r.frameBegun = false

	rec := FrameRecord{DisplayTime: info.DisplayTime, BlendMode: info.EnvironmentBlendMode}
	rec.Layers = append(rec.Layers, info.Layers...)
	r.frames = append(r.frames, rec)
	return xr.Success
}

func (r *Runtime) LocateViews(session xr.Session, info *xr.ViewLocateInfo, state *xr.ViewState, dst []xr.View) (uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrLocateViews"); ok {
		return 0, res
	}
	if session == 0 || session != r.session {
		return 0, xr.ErrorHandleInvalid
	}
	if _, ok := r.spaces[info.Space]; !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if info.DisplayTime <= 0 {
		return 0, xr.ErrorTimeInvalid
	}

	n := viewCount(info.ViewConfigurationType)
	views := make([]xr.View, n)
	for i := range views {
		if i < len(r.cfg.Views) {
			views[i] = r.cfg.Views[i]
		} else {
			views[i] = xr.View{Pose: xr.IdentityPose, Fov: symmetricFov(0.785398)}
		}
	}
	count, res := copyOut(views, dst)
	if dst != nil && res.Succeeded() {
		state.ViewStateFlags = r.viewFlags
	}
	return count, res
}
