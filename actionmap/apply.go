package actionmap

import (
	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/openxr"
)

// Binder is the part of the bridge an action map is applied through.
type Binder interface {
	TrackerCreate(path string) (openxr.TrackerID, error)
	ActionSetCreate(name, localizedName string, priority uint32) (openxr.ActionSetID, error)
	ActionCreate(set openxr.ActionSetID, name, localizedName string, kind openxr.ActionKind, trackers []openxr.TrackerID) (openxr.ActionID, error)
	ProfileCreate(path string) (openxr.ProfileID, error)
	ProfileAddBinding(profile openxr.ProfileID, action openxr.ActionID, path string) error
	ProfileSuggestBindings(profile openxr.ProfileID) error
	ActionSetsAttach(ids []openxr.ActionSetID) error
}

var _ Binder = (*openxr.Bridge)(nil)

// Result holds the ids created by Apply.
type Result struct {
	Trackers   map[string]openxr.TrackerID
	ActionSets map[string]openxr.ActionSetID
	// Actions is keyed by "set/action".
	Actions  map[string]openxr.ActionID
	Profiles map[string]openxr.ProfileID

	sets []openxr.ActionSetID
}

// Action returns the id of set/name, or 0.
func (r *Result) Action(set, name string) openxr.ActionID {
	return r.Actions[set+"/"+name]
}

// Apply creates the document's trackers, sets, actions and profiles through b
// and suggests every profile's bindings. Records are created in document order.
func Apply(b Binder, doc *Document) (*Result, error) {
	res := &Result{
		Trackers:   make(map[string]openxr.TrackerID),
		ActionSets: make(map[string]openxr.ActionSetID),
		Actions:    make(map[string]openxr.ActionID),
		Profiles:   make(map[string]openxr.ProfileID),
	}

	for _, s := range doc.ActionSets {
		localized := s.LocalizedName
		if localized == "" {
			localized = s.Name
		}
		setID, err := b.ActionSetCreate(s.Name, localized, s.Priority)
		if err != nil {
			return res, wrap(err, "action set "+s.Name)
		}
		res.ActionSets[s.Name] = setID
		res.sets = append(res.sets, setID)

		for _, a := range s.Actions {
			trackers, err := res.trackers(b, a.Trackers)
			if err != nil {
				return res, err
			}
			kind, _ := openxr.ParseActionKind(a.Kind)
			localized := a.LocalizedName
			if localized == "" {
				localized = a.Name
			}
			id, err := b.ActionCreate(setID, a.Name, localized, kind, trackers)
			if err != nil {
				return res, wrap(err, "action "+s.Name+"/"+a.Name)
			}
			res.Actions[s.Name+"/"+a.Name] = id
		}
	}

	for _, p := range doc.InteractionProfiles {
		id, err := b.ProfileCreate(p.Path)
		if err != nil {
			return res, wrap(err, "interaction profile "+p.Path)
		}
		res.Profiles[p.Path] = id
		for _, bd := range p.Bindings {
			action := res.Actions[bd.Action]
			for _, path := range bd.Paths {
				if err := b.ProfileAddBinding(id, action, path); err != nil {
					return res, wrap(err, "binding "+path)
				}
			}
		}
		if err := b.ProfileSuggestBindings(id); err != nil {
			return res, wrap(err, "suggest "+p.Path)
		}
	}
	return res, nil
}

func (r *Result) trackers(b Binder, paths []string) ([]openxr.TrackerID, error) {
	ids := make([]openxr.TrackerID, 0, len(paths))
	for _, p := range paths {
		id, ok := r.Trackers[p]
		if !ok {
			var err error
			if id, err = b.TrackerCreate(p); err != nil {
				return nil, wrap(err, "tracker "+p)
			}
			r.Trackers[p] = id
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Attach attaches every set created by Apply in one call.
func Attach(b Binder, r *Result) error {
	if len(r.sets) == 0 {
		return nil
	}
	return b.ActionSetsAttach(r.sets)
}

func wrap(err error, what string) error {
	return errors.Wrap(errors.PhaseInput, errors.KindInvalidData, err, "apply "+what)
}
