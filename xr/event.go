package xr

// Event is a record returned by PollEvent.
type Event interface {
	EventName() string
}

type EventDataEventsLost struct {
	LostEventCount uint32
}

type EventDataInstanceLossPending struct {
	LossTime Time
}

type EventDataSessionStateChanged struct {
	Session Session
	State   SessionState
	Time    Time
}

type EventDataReferenceSpaceChangePending struct {
	PoseInPreviousSpace Posef
	Session             Session
	ReferenceSpaceType  ReferenceSpaceType
	ChangeTime          Time
	PoseValid           bool
}

type EventDataInteractionProfileChanged struct {
	Session Session
}

type EventDataVisibilityMaskChanged struct {
	Session               Session
	ViewConfigurationType ViewConfigurationType
	ViewIndex             uint32
}

func (*EventDataEventsLost) EventName() string { return "events_lost" }

func (*EventDataInstanceLossPending) EventName() string { return "instance_loss_pending" }

func (*EventDataSessionStateChanged) EventName() string { return "session_state_changed" }

func (*EventDataReferenceSpaceChangePending) EventName() string {
	return "reference_space_change_pending"
}

func (*EventDataInteractionProfileChanged) EventName() string {
	return "interaction_profile_changed"
}

func (*EventDataVisibilityMaskChanged) EventName() string { return "visibility_mask_changed" }
