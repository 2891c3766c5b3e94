package openxr

import (
	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/handle"
	"github.com/wippyai/xr-bridge/xr"
)

// SyncActionSets synchronizes the given active sets in a single call.
func (b *Bridge) SyncActionSets(ids ...ActionSetID) error {
	if len(ids) == 0 {
		return errors.InvalidInput(errors.PhaseInput, "at least one active action set is required")
	}
	if !b.running {
		return errors.NotRunning(errors.PhaseInput)
	}

	active := make([]xr.ActiveActionSet, 0, len(ids))
	for _, id := range ids {
		s, ok := b.actionSets.Get(handle.Handle(id))
		if !ok {
			return errors.NotFound(errors.PhaseInput, "action set", id)
		}
		active = append(active, xr.ActiveActionSet{ActionSet: s.native})
	}

	res := b.rt.SyncActions(b.session, &xr.ActionsSyncInfo{ActiveActionSets: active})
	if res.Failed() {
		b.logFailure("xrSyncActions", res)
		return errors.RuntimeCall(errors.PhaseInput, errors.KindRuntimeCall, "xrSyncActions", res)
	}
	if res == xr.SessionNotFocused {
		Logger().Debug("actions synced while unfocused")
	}
	return nil
}

// actionFor resolves an action of the wanted kind and the subaction path of
// tracker. Tracker 0 reads the action across all of its trackers.
func (b *Bridge) actionFor(id ActionID, tracker TrackerID, want ActionKind) (*action, int, xr.Path, error) {
	a, ok := b.actions.Get(handle.Handle(id))
	if !ok {
		return nil, -1, xr.NullPath, errors.NotFound(errors.PhaseInput, "action", id)
	}
	if a.kind != want {
		return nil, -1, xr.NullPath, errors.KindMismatch(a.name, a.kind.String(), want.String())
	}
	if tracker == 0 {
		return a, -1, xr.NullPath, nil
	}
	i := a.slot(tracker)
	if i < 0 {
		return nil, -1, xr.NullPath, errors.New(errors.PhaseInput, errors.KindPathUnsupported).
			Path(a.name).
			Value(tracker).
			Detail("action does not read from tracker %s", b.TrackerName(tracker)).
			Build()
	}
	return a, i, a.trackers[i].path, nil
}

func (b *Bridge) stateInfo(a *action, path xr.Path) *xr.ActionStateGetInfo {
	return &xr.ActionStateGetInfo{Action: a.native, SubactionPath: path}
}

// GetActionBool returns the boolean state of an action for tracker, or false
// while the action is inactive. Runtime failures are logged and read as false.
func (b *Bridge) GetActionBool(id ActionID, tracker TrackerID) (bool, error) {
	a, _, path, err := b.actionFor(id, tracker, ActionBool)
	if err != nil {
		return false, err
	}
	if b.session == 0 {
		return false, nil
	}
	var state xr.ActionStateBoolean
	if res := b.rt.GetActionStateBoolean(b.session, b.stateInfo(a, path), &state); res.Failed() {
		b.logFailure("xrGetActionStateBoolean", res, zap.String("action", a.name))
		return false, nil
	}
	if !state.IsActive {
		return false, nil
	}
	return state.CurrentState, nil
}

// GetActionFloat returns the scalar state of an action for tracker, or 0
// while the action is inactive.
func (b *Bridge) GetActionFloat(id ActionID, tracker TrackerID) (float32, error) {
	a, _, path, err := b.actionFor(id, tracker, ActionFloat)
	if err != nil {
		return 0, err
	}
	if b.session == 0 {
		return 0, nil
	}
	var state xr.ActionStateFloat
	if res := b.rt.GetActionStateFloat(b.session, b.stateInfo(a, path), &state); res.Failed() {
		b.logFailure("xrGetActionStateFloat", res, zap.String("action", a.name))
		return 0, nil
	}
	if !state.IsActive {
		return 0, nil
	}
	return state.CurrentState, nil
}

// GetActionVector2 returns the 2D state of an action for tracker, or the
// zero vector while the action is inactive.
func (b *Bridge) GetActionVector2(id ActionID, tracker TrackerID) (xr.Vector2f, error) {
	a, _, path, err := b.actionFor(id, tracker, ActionVector2)
	if err != nil {
		return xr.Vector2f{}, err
	}
	if b.session == 0 {
		return xr.Vector2f{}, nil
	}
	var state xr.ActionStateVector2f
	if res := b.rt.GetActionStateVector2f(b.session, b.stateInfo(a, path), &state); res.Failed() {
		b.logFailure("xrGetActionStateVector2f", res, zap.String("action", a.name))
		return xr.Vector2f{}, nil
	}
	if !state.IsActive {
		return xr.Vector2f{}, nil
	}
	return state.CurrentState, nil
}

// GetActionPose locates a pose action for tracker in play space at the next
// frame's predicted display time. The action space for the pair is created
// on the first read and reused until the session ends.
func (b *Bridge) GetActionPose(id ActionID, tracker TrackerID) (PoseReading, error) {
	if tracker == 0 {
		return noPose(), errors.InvalidInput(errors.PhaseInput, "pose reads need a tracker")
	}
	a, i, path, err := b.actionFor(id, tracker, ActionPose)
	if err != nil {
		return noPose(), err
	}
	t := b.NextFrameTime()
	if b.session == 0 || t == 0 {
		return noPose(), nil
	}

	space, ok := b.actionSpace(a, i)
	if !ok {
		return noPose(), nil
	}

	var active xr.ActionStatePose
	if res := b.rt.GetActionStatePose(b.session, b.stateInfo(a, path), &active); res.Failed() {
		b.logFailure("xrGetActionStatePose", res, zap.String("action", a.name))
		return noPose(), nil
	}
	if !active.IsActive {
		a.setValid(i, false)
		return noPose(), nil
	}

	var vel xr.SpaceVelocity
	loc := xr.SpaceLocation{Velocity: &vel}
	if res := b.rt.LocateSpace(space, b.playSpace, t, &loc); res.Failed() {
		b.logFailure("xrLocateSpace", res, zap.String("action", a.name))
		a.setValid(i, false)
		return noPose(), nil
	}
	reading := readingFromLocation(loc, vel)
	a.setValid(i, reading.Confidence != ConfidenceNone)
	return reading, nil
}

// actionSpace returns the action space of slot i, creating it at most once.
func (b *Bridge) actionSpace(a *action, i int) (xr.Space, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	slot := &a.trackers[i]
	if slot.space != 0 {
		return slot.space, true
	}
	space, res := b.rt.CreateActionSpace(b.session, &xr.ActionSpaceCreateInfo{
		Action:            a.native,
		SubactionPath:     slot.path,
		PoseInActionSpace: xr.IdentityPose,
	})
	if res.Failed() {
		b.logFailure("xrCreateActionSpace", res, zap.String("action", a.name))
		return 0, false
	}
	slot.space = space
	return space, true
}

func (a *action) setValid(i int, valid bool) {
	a.mu.Lock()
	a.trackers[i].valid = valid
	a.mu.Unlock()
}

// ActionPoseValid reports whether the last pose read for the pair located it.
func (b *Bridge) ActionPoseValid(id ActionID, tracker TrackerID) bool {
	a, ok := b.actions.Get(handle.Handle(id))
	if !ok {
		return false
	}
	i := a.slot(tracker)
	if i < 0 {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trackers[i].valid
}

// TriggerHapticPulse vibrates the device behind tracker. A non-positive
// duration asks for the shortest pulse the device supports.
func (b *Bridge) TriggerHapticPulse(id ActionID, tracker TrackerID, frequency, amplitude float32, durationNs int64) error {
	a, _, path, err := b.actionFor(id, tracker, ActionHaptic)
	if err != nil {
		return err
	}
	if !b.running {
		return errors.NotRunning(errors.PhaseInput)
	}
	duration := xr.Duration(durationNs)
	if duration <= 0 {
		duration = xr.MinHapticDuration
	}
	vibration := &xr.HapticVibration{Duration: duration, Frequency: frequency, Amplitude: amplitude}
	res := b.rt.ApplyHapticFeedback(b.session, &xr.HapticActionInfo{Action: a.native, SubactionPath: path}, vibration)
	if res.Failed() {
		b.logFailure("xrApplyHapticFeedback", res, zap.String("action", a.name))
		return errors.RuntimeCall(errors.PhaseInput, errors.KindRuntimeCall, "xrApplyHapticFeedback", res)
	}
	return nil
}

// StopHapticPulse stops a running vibration.
func (b *Bridge) StopHapticPulse(id ActionID, tracker TrackerID) error {
	a, _, path, err := b.actionFor(id, tracker, ActionHaptic)
	if err != nil {
		return err
	}
	if !b.running {
		return errors.NotRunning(errors.PhaseInput)
	}
	res := b.rt.StopHapticFeedback(b.session, &xr.HapticActionInfo{Action: a.native, SubactionPath: path})
	if res.Failed() {
		b.logFailure("xrStopHapticFeedback", res, zap.String("action", a.name))
		return errors.RuntimeCall(errors.PhaseInput, errors.KindRuntimeCall, "xrStopHapticFeedback", res)
	}
	return nil
}
