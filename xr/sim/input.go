package sim

import (
	"github.com/wippyai/xr-bridge/xr"
)

func (r *Runtime) CreateActionSet(instance xr.Instance, info *xr.ActionSetCreateInfo) (xr.ActionSet, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrCreateActionSet"); ok {
		return 0, res
	}
	if instance != r.instance || instance == 0 {
		return 0, xr.ErrorHandleInvalid
	}
	if info.ActionSetName == "" {
		return 0, xr.ErrorNameInvalid
	}
	if info.LocalizedActionSetName == "" {
		return 0, xr.ErrorLocalizedNameInvalid
	}
	for _, s := range r.actionSets {
		if s.name == info.ActionSetName {
			return 0, xr.ErrorNameDuplicated
		}
	}
	h := xr.ActionSet(r.newHandle())
	r.actionSets[h] = &actionSet{name: info.ActionSetName, priority: info.Priority}
	return h, xr.Success
}

func (r *Runtime) DestroyActionSet(set xr.ActionSet) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrDestroyActionSet"); ok {
		return res
	}
	if _, ok := r.actionSets[set]; !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.actionSets, set)
	for h, a := range r.actions {
		if a.set == set {
			delete(r.actions, h)
		}
	}
	return xr.Success
}

// CreateAction accepts actions on attached sets; such actions simply never
// receive bindings.
func (r *Runtime) CreateAction(set xr.ActionSet, info *xr.ActionCreateInfo) (xr.Action, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrCreateAction"); ok {
		return 0, res
	}
	if _, ok := r.actionSets[set]; !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if info.ActionName == "" {
		return 0, xr.ErrorNameInvalid
	}
	switch info.ActionType {
	case xr.ActionTypeBooleanInput, xr.ActionTypeFloatInput, xr.ActionTypeVector2fInput,
		xr.ActionTypePoseInput, xr.ActionTypeVibrationOutput:
	default:
		return 0, xr.ErrorValidationFailure
	}
	for _, a := range r.actions {
		if a.set == set && a.name == info.ActionName {
			return 0, xr.ErrorNameDuplicated
		}
	}
	for _, p := range info.SubactionPaths {
		if _, ok := r.pathNames[p]; !ok {
			return 0, xr.ErrorPathInvalid
		}
	}
	h := xr.Action(r.newHandle())
	r.actions[h] = &action{
		name:       info.ActionName,
		set:        set,
		typ:        info.ActionType,
		subactions: append([]xr.Path(nil), info.SubactionPaths...),
	}
	return h, xr.Success
}

func (r *Runtime) DestroyAction(a xr.Action) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrDestroyAction"); ok {
		return res
	}
	if _, ok := r.actions[a]; !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.actions, a)
	return xr.Success
}

func (r *Runtime) SuggestInteractionProfileBindings(instance xr.Instance, info *xr.InteractionProfileSuggestedBinding) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrSuggestInteractionProfileBindings"); ok {
		return res
	}
	if instance != r.instance || instance == 0 {
		return xr.ErrorHandleInvalid
	}
	if r.attached {
		return xr.ErrorActionsetsAlreadyAttached
	}
	name, ok := r.pathNames[info.InteractionProfile]
	if !ok {
		return xr.ErrorPathInvalid
	}
	if !contains(r.cfg.InteractionProfiles, name) {
		return xr.ErrorPathUnsupported
	}
	for _, b := range info.SuggestedBindings {
		if _, ok := r.actions[b.Action]; !ok {
			return xr.ErrorHandleInvalid
		}
		if _, ok := r.pathNames[b.Binding]; !ok {
			return xr.ErrorPathInvalid
		}
	}
	r.suggested[info.InteractionProfile] = append([]xr.ActionSuggestedBinding(nil), info.SuggestedBindings...)
	return xr.Success
}

func (r *Runtime) AttachSessionActionSets(session xr.Session, info *xr.SessionActionSetsAttachInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrAttachSessionActionSets"); ok {
		return res
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	if r.attached {
		return xr.ErrorActionsetsAlreadyAttached
	}
	for _, s := range info.ActionSets {
		if _, ok := r.actionSets[s]; !ok {
			return xr.ErrorHandleInvalid
		}
	}
	r.attached = true
	return xr.Success
}

func (r *Runtime) GetCurrentInteractionProfile(session xr.Session, topLevel xr.Path, state *xr.InteractionProfileState) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrGetCurrentInteractionProfile"); ok {
		return res
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	if !r.attached {
		return xr.ErrorActionsetNotAttached
	}
	if _, ok := r.pathNames[topLevel]; !ok {
		return xr.ErrorPathInvalid
	}
	state.InteractionProfile = r.currentProfiles[topLevel]
	return xr.Success
}

func (r *Runtime) SyncActions(session xr.Session, info *xr.ActionsSyncInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrSyncActions"); ok {
		return res
	}
	if session == 0 || session != r.session {
		return xr.ErrorHandleInvalid
	}
	if !r.attached {
		return xr.ErrorActionsetNotAttached
	}
	if len(info.ActiveActionSets) == 0 {
		return xr.ErrorValidationFailure
	}
	for _, a := range info.ActiveActionSets {
		if _, ok := r.actionSets[a.ActionSet]; !ok {
			return xr.ErrorHandleInvalid
		}
	}
	r.synced = true
	if r.sessionState != xr.SessionStateFocused {
		return xr.SessionNotFocused
	}
	return xr.Success
}

// resolve validates an action state query and returns the state key.
// Must be called with r.mu held.
func (r *Runtime) resolve(session xr.Session, info *xr.ActionStateGetInfo, want xr.ActionType) (stateKey, xr.Result) {
	if session == 0 || session != r.session {
		return stateKey{}, xr.ErrorHandleInvalid
	}
	a, ok := r.actions[info.Action]
	if !ok {
		return stateKey{}, xr.ErrorHandleInvalid
	}
	if a.typ != want {
		return stateKey{}, xr.ErrorActionTypeMismatch
	}
	if info.SubactionPath != xr.NullPath && !contains(a.subactions, info.SubactionPath) {
		return stateKey{}, xr.ErrorPathUnsupported
	}
	return stateKey{action: a.name, path: r.pathNames[info.SubactionPath]}, xr.Success
}

func (r *Runtime) GetActionStateBoolean(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStateBoolean) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrGetActionStateBoolean"); ok {
		return res
	}
	key, res := r.resolve(session, info, xr.ActionTypeBooleanInput)
	if res.Failed() {
		return res
	}
	*state = xr.ActionStateBoolean{}
	if v, ok := r.boolStates[key]; ok && r.synced {
		state.CurrentState = v
		state.IsActive = true
		state.LastChangeTime = r.frameTime
	}
	return xr.Success
}

func (r *Runtime) GetActionStateFloat(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStateFloat) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrGetActionStateFloat"); ok {
		return res
	}
	key, res := r.resolve(session, info, xr.ActionTypeFloatInput)
	if res.Failed() {
		return res
	}
	*state = xr.ActionStateFloat{}
	if v, ok := r.floatStates[key]; ok && r.synced {
		state.CurrentState = v
		state.IsActive = true
		state.LastChangeTime = r.frameTime
	}
	return xr.Success
}

func (r *Runtime) GetActionStateVector2f(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStateVector2f) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrGetActionStateVector2f"); ok {
		return res
	}
	key, res := r.resolve(session, info, xr.ActionTypeVector2fInput)
	if res.Failed() {
		return res
	}
	*state = xr.ActionStateVector2f{}
	if v, ok := r.vec2States[key]; ok && r.synced {
		state.CurrentState = v
		state.IsActive = true
		state.LastChangeTime = r.frameTime
	}
	return xr.Success
}

func (r *Runtime) GetActionStatePose(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStatePose) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrGetActionStatePose"); ok {
		return res
	}
	key, res := r.resolve(session, info, xr.ActionTypePoseInput)
	if res.Failed() {
		return res
	}
	_, ok := r.poseLocations[key.action+"|"+key.path]
	state.IsActive = ok && r.synced
	return xr.Success
}

func (r *Runtime) ApplyHapticFeedback(session xr.Session, info *xr.HapticActionInfo, vibration *xr.HapticVibration) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrApplyHapticFeedback"); ok {
		return res
	}
	key, res := r.resolve(session, &xr.ActionStateGetInfo{Action: info.Action, SubactionPath: info.SubactionPath}, xr.ActionTypeVibrationOutput)
	if res.Failed() {
		return res
	}
	if !r.attached {
		return xr.ErrorActionsetNotAttached
	}
	r.haptics = append(r.haptics, HapticRecord{
		Action:    key.action,
		Path:      key.path,
		Duration:  vibration.Duration,
		Frequency: vibration.Frequency,
		Amplitude: vibration.Amplitude,
	})
	return xr.Success
}

func (r *Runtime) StopHapticFeedback(session xr.Session, info *xr.HapticActionInfo) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.enter("xrStopHapticFeedback"); ok {
		return res
	}
	_, res := r.resolve(session, &xr.ActionStateGetInfo{Action: info.Action, SubactionPath: info.SubactionPath}, xr.ActionTypeVibrationOutput)
	return res
}
