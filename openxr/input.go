package openxr

import (
	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/handle"
	"github.com/wippyai/xr-bridge/xr"
)

const noneName = "None"

func (b *Bridge) stringToPath(s string) (xr.Path, error) {
	if b.instance == 0 {
		return xr.NullPath, errors.NotInitialized(errors.PhaseInput, "instance")
	}
	p, res := b.rt.StringToPath(b.instance, s)
	if res.Failed() {
		return xr.NullPath, errors.New(errors.PhaseInput, errors.KindInvalidInput).
			Call("xrStringToPath", res).
			Value(s).
			Detail("path %q", s).
			Build()
	}
	return p, nil
}

// Trackers

// TrackerCreate resolves a top-level user path such as /user/hand/left and
// returns its tracker. A path that already has a tracker returns that one.
func (b *Bridge) TrackerCreate(path string) (TrackerID, error) {
	p, err := b.stringToPath(path)
	if err != nil {
		return 0, err
	}
	if h, _, ok := b.trackers.Find(func(t *tracker) bool { return t.path == p }); ok {
		return TrackerID(h), nil
	}
	h := b.trackers.Alloc(&tracker{name: path, path: p})
	Logger().Debug("tracker created", zap.String("path", path), zap.Stringer("id", h))
	return TrackerID(h), nil
}

// TrackerFree releases a tracker.
func (b *Bridge) TrackerFree(id TrackerID) error {
	if _, ok := b.trackers.Free(handle.Handle(id)); !ok {
		return errors.NotFound(errors.PhaseInput, "tracker", id)
	}
	return nil
}

// TrackerName returns the tracker's top-level path, or "None".
func (b *Bridge) TrackerName(id TrackerID) string {
	if t, ok := b.trackers.Get(handle.Handle(id)); ok {
		return t.name
	}
	return noneName
}

// TrackerProfile returns the interaction profile currently bound to the
// tracker, or 0 when none is bound or the profile has no record.
func (b *Bridge) TrackerProfile(id TrackerID) ProfileID {
	if t, ok := b.trackers.Get(handle.Handle(id)); ok {
		return t.profile
	}
	return 0
}

// TrackerProfilePath returns the path of the tracker's bound interaction profile.
func (b *Bridge) TrackerProfilePath(id TrackerID) string {
	t, ok := b.trackers.Get(handle.Handle(id))
	if !ok || t.profilePath == xr.NullPath || b.instance == 0 {
		return ""
	}
	s, res := b.rt.PathToString(b.instance, t.profilePath)
	if res.Failed() {
		return ""
	}
	return s
}

// FindTracker returns the tracker for a top-level path, or 0.
func (b *Bridge) FindTracker(path string) TrackerID {
	h, _, _ := b.trackers.Find(func(t *tracker) bool { return t.name == path })
	return TrackerID(h)
}

// Trackers returns all live trackers in creation slot order.
func (b *Bridge) Trackers() []TrackerID {
	handles := b.trackers.Handles()
	out := make([]TrackerID, len(handles))
	for i, h := range handles {
		out[i] = TrackerID(h)
	}
	return out
}

// Action sets

// ActionSetCreate creates an action set. Higher priority sets win
// conflicting bindings.
func (b *Bridge) ActionSetCreate(name, localizedName string, priority uint32) (ActionSetID, error) {
	if b.instance == 0 {
		return 0, errors.NotInitialized(errors.PhaseInput, "instance")
	}
	native, res := b.rt.CreateActionSet(b.instance, &xr.ActionSetCreateInfo{
		ActionSetName:          name,
		LocalizedActionSetName: localizedName,
		Priority:               priority,
	})
	if res.Failed() {
		b.logFailure("xrCreateActionSet", res, zap.String("action_set", name))
		return 0, errors.New(errors.PhaseInput, errors.KindRuntimeCall).
			Path(name).
			Call("xrCreateActionSet", res).
			Build()
	}
	h := b.actionSets.Alloc(&actionSet{
		rt:        b.rt,
		native:    native,
		name:      name,
		localized: localizedName,
		priority:  priority,
	})
	return ActionSetID(h), nil
}

// ActionSetFree frees the set's actions, then the set.
func (b *Bridge) ActionSetFree(id ActionSetID) error {
	if !b.actionSets.Owns(handle.Handle(id)) {
		return errors.NotFound(errors.PhaseInput, "action set", id)
	}
	for _, h := range b.actions.Handles() {
		if a, ok := b.actions.Get(h); ok && a.set == id {
			b.actions.Free(h)
		}
	}
	b.actionSets.Free(handle.Handle(id))
	return nil
}

// ActionSetName returns the set's name, or "None".
func (b *Bridge) ActionSetName(id ActionSetID) string {
	if s, ok := b.actionSets.Get(handle.Handle(id)); ok {
		return s.name
	}
	return noneName
}

// ActionSetIsAttached reports whether the set is attached to the session.
func (b *Bridge) ActionSetIsAttached(id ActionSetID) bool {
	s, ok := b.actionSets.Get(handle.Handle(id))
	return ok && s.attached
}

// FindActionSet returns the set with the given name, or 0.
func (b *Bridge) FindActionSet(name string) ActionSetID {
	h, _, _ := b.actionSets.Find(func(s *actionSet) bool { return s.name == name })
	return ActionSetID(h)
}

// ActionSetAttach attaches a single action set.
func (b *Bridge) ActionSetAttach(id ActionSetID) error {
	return b.ActionSetsAttach([]ActionSetID{id})
}

// ActionSetsAttach attaches the sets to the session in one call. Sets that
// are already attached are skipped. Attached sets accept no further bindings.
func (b *Bridge) ActionSetsAttach(ids []ActionSetID) error {
	if b.session == 0 {
		return errors.NotInitialized(errors.PhaseInput, "session")
	}

	var (
		natives []xr.ActionSet
		sets    []*actionSet
	)
	for _, id := range ids {
		s, ok := b.actionSets.Get(handle.Handle(id))
		if !ok {
			return errors.NotFound(errors.PhaseInput, "action set", id)
		}
		if s.attached {
			continue
		}
		natives = append(natives, s.native)
		sets = append(sets, s)
	}
	if len(natives) == 0 {
		return nil
	}

	res := b.rt.AttachSessionActionSets(b.session, &xr.SessionActionSetsAttachInfo{ActionSets: natives})
	if res.Failed() {
		b.logFailure("xrAttachSessionActionSets", res)
		return errors.RuntimeCall(errors.PhaseInput, errors.KindRuntimeCall, "xrAttachSessionActionSets", res)
	}
	for _, s := range sets {
		s.attached = true
		Logger().Debug("action set attached", zap.String("action_set", s.name))
	}
	return nil
}

// Actions

// ActionCreate creates an action in set that reads from trackers. Actions
// may still be created on an attached set, but they never receive bindings.
func (b *Bridge) ActionCreate(set ActionSetID, name, localizedName string, kind ActionKind, trackers []TrackerID) (ActionID, error) {
	s, ok := b.actionSets.Get(handle.Handle(set))
	if !ok {
		return 0, errors.NotFound(errors.PhaseInput, "action set", set)
	}
	if kind.xrType() == 0 {
		return 0, errors.InvalidInput(errors.PhaseInput, "invalid action kind for "+name)
	}
	if s.attached {
		Logger().Warn("action created on attached action set",
			zap.String("action_set", s.name), zap.String("action", name))
	}

	slots := make([]actionTracker, 0, len(trackers))
	paths := make([]xr.Path, 0, len(trackers))
	for _, id := range trackers {
		t, ok := b.trackers.Get(handle.Handle(id))
		if !ok {
			return 0, errors.NotFound(errors.PhaseInput, "tracker", id)
		}
		slots = append(slots, actionTracker{tracker: id, path: t.path})
		paths = append(paths, t.path)
	}

	native, res := b.rt.CreateAction(s.native, &xr.ActionCreateInfo{
		ActionName:          name,
		LocalizedActionName: localizedName,
		ActionType:          kind.xrType(),
		SubactionPaths:      paths,
	})
	if res.Failed() {
		b.logFailure("xrCreateAction", res, zap.String("action", name))
		return 0, errors.New(errors.PhaseInput, errors.KindRuntimeCall).
			Path(s.name, name).
			Call("xrCreateAction", res).
			Build()
	}

	h := b.actions.Alloc(&action{
		rt:       b.rt,
		native:   native,
		name:     name,
		kind:     kind,
		set:      set,
		trackers: slots,
	})
	return ActionID(h), nil
}

// ActionFree destroys an action and its action spaces.
func (b *Bridge) ActionFree(id ActionID) error {
	if _, ok := b.actions.Free(handle.Handle(id)); !ok {
		return errors.NotFound(errors.PhaseInput, "action", id)
	}
	return nil
}

// ActionName returns the action's name, or "None".
func (b *Bridge) ActionName(id ActionID) string {
	if a, ok := b.actions.Get(handle.Handle(id)); ok {
		return a.name
	}
	return noneName
}

// ActionKindOf returns the action's kind, or 0 for unknown actions.
func (b *Bridge) ActionKindOf(id ActionID) ActionKind {
	if a, ok := b.actions.Get(handle.Handle(id)); ok {
		return a.kind
	}
	return 0
}

// FindAction returns the action called name in set, or 0.
func (b *Bridge) FindAction(set ActionSetID, name string) ActionID {
	h, _, _ := b.actions.Find(func(a *action) bool { return a.set == set && a.name == name })
	return ActionID(h)
}

// Interaction profiles

// ProfileCreate returns the profile for an interaction profile path, creating
// it on first use.
func (b *Bridge) ProfileCreate(path string) (ProfileID, error) {
	p, err := b.stringToPath(path)
	if err != nil {
		return 0, err
	}
	if h, _, ok := b.profiles.Find(func(pr *profile) bool { return pr.path == p }); ok {
		return ProfileID(h), nil
	}
	h := b.profiles.Alloc(&profile{name: path, path: p})
	return ProfileID(h), nil
}

// ProfileAddBinding adds an (action, binding path) suggestion. Bindings for
// actions of an attached set are rejected.
func (b *Bridge) ProfileAddBinding(id ProfileID, actionID ActionID, path string) error {
	pr, ok := b.profiles.Get(handle.Handle(id))
	if !ok {
		return errors.NotFound(errors.PhaseInput, "interaction profile", id)
	}
	a, ok := b.actions.Get(handle.Handle(actionID))
	if !ok {
		return errors.NotFound(errors.PhaseInput, "action", actionID)
	}
	if s, ok := b.actionSets.Get(handle.Handle(a.set)); ok && s.attached {
		return errors.Attached(s.name, "cannot bind "+a.name+" to "+path)
	}
	p, err := b.stringToPath(path)
	if err != nil {
		return err
	}
	pr.bindings = append(pr.bindings, binding{action: actionID, path: p, pathName: path})
	return nil
}

// ProfileClearBindings drops every binding added to the profile.
func (b *Bridge) ProfileClearBindings(id ProfileID) error {
	pr, ok := b.profiles.Get(handle.Handle(id))
	if !ok {
		return errors.NotFound(errors.PhaseInput, "interaction profile", id)
	}
	pr.bindings = nil
	return nil
}

// ProfileBindings returns the binding paths of the profile keyed by action.
func (b *Bridge) ProfileBindings(id ProfileID) map[ActionID][]string {
	pr, ok := b.profiles.Get(handle.Handle(id))
	if !ok {
		return nil
	}
	out := make(map[ActionID][]string)
	for _, bd := range pr.bindings {
		out[bd.action] = append(out[bd.action], bd.pathName)
	}
	return out
}

// ProfileSuggestBindings submits the profile's bindings. A profile the
// runtime does not know is not an error. Suggestions touching an attached
// set are rejected before any runtime call.
func (b *Bridge) ProfileSuggestBindings(id ProfileID) error {
	if b.instance == 0 {
		return errors.NotInitialized(errors.PhaseInput, "instance")
	}
	pr, ok := b.profiles.Get(handle.Handle(id))
	if !ok {
		return errors.NotFound(errors.PhaseInput, "interaction profile", id)
	}

	suggested := make([]xr.ActionSuggestedBinding, 0, len(pr.bindings))
	for _, bd := range pr.bindings {
		a, ok := b.actions.Get(handle.Handle(bd.action))
		if !ok {
			Logger().Warn("binding for freed action skipped",
				zap.String("profile", pr.name), zap.String("binding", bd.pathName))
			continue
		}
		if s, ok := b.actionSets.Get(handle.Handle(a.set)); ok && s.attached {
			return errors.Attached(s.name, "cannot suggest bindings for "+pr.name)
		}
		suggested = append(suggested, xr.ActionSuggestedBinding{Action: a.native, Binding: bd.path})
	}

	res := b.rt.SuggestInteractionProfileBindings(b.instance, &xr.InteractionProfileSuggestedBinding{
		InteractionProfile: pr.path,
		SuggestedBindings:  suggested,
	})
	switch {
	case res == xr.ErrorPathUnsupported:
		Logger().Info("interaction profile not supported by runtime", zap.String("profile", pr.name))
		return nil
	case res.Failed():
		b.logFailure("xrSuggestInteractionProfileBindings", res, zap.String("profile", pr.name))
		return errors.New(errors.PhaseInput, errors.KindRuntimeCall).
			Path(pr.name).
			Call("xrSuggestInteractionProfileBindings", res).
			Build()
	}
	Logger().Debug("bindings suggested", zap.String("profile", pr.name), zap.Int("count", len(suggested)))
	return nil
}

// ProfileFree releases a profile record.
func (b *Bridge) ProfileFree(id ProfileID) error {
	if _, ok := b.profiles.Free(handle.Handle(id)); !ok {
		return errors.NotFound(errors.PhaseInput, "interaction profile", id)
	}
	return nil
}

// ProfileName returns the profile's path, or "None".
func (b *Bridge) ProfileName(id ProfileID) string {
	if pr, ok := b.profiles.Get(handle.Handle(id)); ok {
		return pr.name
	}
	return noneName
}

// FindProfile returns the profile for a path, or 0.
func (b *Bridge) FindProfile(path string) ProfileID {
	h, _, _ := b.profiles.Find(func(pr *profile) bool { return pr.name == path })
	return ProfileID(h)
}

// checkTrackerProfiles queries the bound interaction profile of every tracker
// and notifies the host of each change.
func (b *Bridge) checkTrackerProfiles() {
	if b.session == 0 {
		return
	}
	for _, h := range b.trackers.Handles() {
		t, ok := b.trackers.Get(h)
		if !ok {
			continue
		}
		var state xr.InteractionProfileState
		res := b.rt.GetCurrentInteractionProfile(b.session, t.path, &state)
		if res == xr.ErrorActionsetNotAttached {
			return
		}
		if res.Failed() {
			b.logFailure("xrGetCurrentInteractionProfile", res, zap.String("tracker", t.name))
			continue
		}
		if state.InteractionProfile == t.profilePath {
			continue
		}

		t.profilePath = state.InteractionProfile
		t.profile = 0
		if state.InteractionProfile != xr.NullPath {
			if ph, _, ok := b.profiles.Find(func(pr *profile) bool { return pr.path == state.InteractionProfile }); ok {
				t.profile = ProfileID(ph)
			}
		}
		Logger().Info("tracker interaction profile changed",
			zap.String("tracker", t.name),
			zap.String("profile", b.ProfileName(t.profile)))
		b.host.TrackerProfileChanged(TrackerID(h), t.profile)
	}
}
