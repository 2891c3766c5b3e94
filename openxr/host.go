package openxr

// Host receives session notifications from the bridge.
type Host interface {
	OnStateReady()
	OnStateVisible()
	OnStateFocused()
	OnStateStopping()
	// OnPoseRecentered is called when the runtime moved the play space origin.
	OnPoseRecentered()
	TrackerProfileChanged(tracker TrackerID, profile ProfileID)
}

// LossHandler is optionally implemented by a Host that wants to schedule
// shutdown when the session is being lost or the runtime wants to exit.
type LossHandler interface {
	OnStateLossPending()
	OnStateExiting()
}

// NopHost ignores every notification.
type NopHost struct{}

func (NopHost) OnStateReady()                              {}
func (NopHost) OnStateVisible()                            {}
func (NopHost) OnStateFocused()                            {}
func (NopHost) OnStateStopping()                           {}
func (NopHost) OnPoseRecentered()                          {}
func (NopHost) TrackerProfileChanged(TrackerID, ProfileID) {}

var _ Host = NopHost{}
