package openxr

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/handle"
	"github.com/wippyai/xr-bridge/xr"
)

// named is implemented by every record kept in a bridge store.
type named interface {
	recordName() string
}

// recordLog reports record allocation and release at debug level.
type recordLog struct{}

func (recordLog) OnHandleEvent(e handle.Event) {
	ce := Logger().Check(zap.DebugLevel, "record allocated")
	if e.Type == handle.EventFreed {
		ce = Logger().Check(zap.DebugLevel, "record freed")
	}
	if ce == nil {
		return
	}
	name := ""
	if n, ok := e.Value.(named); ok {
		name = n.recordName()
	}
	ce.Write(zap.Stringer("kind", e.Handle.Kind()), zap.Stringer("handle", e.Handle), zap.String("name", name))
}

type tracker struct {
	name        string
	path        xr.Path
	profilePath xr.Path
	profile     ProfileID
}

func (t *tracker) recordName() string { return t.name }

type actionSet struct {
	rt        xr.Runtime
	native    xr.ActionSet
	name      string
	localized string
	priority  uint32
	attached  bool
}

func (s *actionSet) recordName() string { return s.name }

func (s *actionSet) Drop() {
	if res := s.rt.DestroyActionSet(s.native); res.Failed() {
		Logger().Warn("action set not destroyed", zap.String("action_set", s.name), zap.Stringer("result", res))
	}
}

// actionTracker is one (action, tracker) pair. Pose actions lazily create
// space on first read.
type actionTracker struct {
	tracker TrackerID
	path    xr.Path
	space   xr.Space
	valid   bool
}

type action struct {
	rt       xr.Runtime
	native   xr.Action
	name     string
	kind     ActionKind
	set      ActionSetID
	trackers []actionTracker
	mu       sync.Mutex
}

func (a *action) recordName() string { return a.name }

func (a *action) Drop() {
	a.destroySpaces()
	if res := a.rt.DestroyAction(a.native); res.Failed() {
		Logger().Warn("action not destroyed", zap.String("action", a.name), zap.Stringer("result", res))
	}
}

// destroySpaces releases every action space. Spaces live only as long as the
// session that created them.
func (a *action) destroySpaces() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.trackers {
		t := &a.trackers[i]
		if t.space == 0 {
			continue
		}
		if res := a.rt.DestroySpace(t.space); res.Failed() {
			Logger().Warn("action space not destroyed", zap.String("action", a.name), zap.Stringer("result", res))
		}
		t.space = 0
		t.valid = false
	}
}

// slot returns the index of tracker in the action's tracker list.
func (a *action) slot(t TrackerID) int {
	for i := range a.trackers {
		if a.trackers[i].tracker == t {
			return i
		}
	}
	return -1
}

type binding struct {
	action   ActionID
	path     xr.Path
	pathName string
}

type profile struct {
	name     string
	path     xr.Path
	bindings []binding
}

func (p *profile) recordName() string { return p.name }
