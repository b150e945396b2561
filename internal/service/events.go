package service

// Typed domain events for the changes that can move a deadline out from
// under a running attempt. Subscribers are registered statically at wiring
// time; there is no runtime-keyed event table.

type MembershipAdded struct {
	CourseID uint
	GroupID  uint
	UserID   uint
}

type MembershipRemoved struct {
	CourseID uint
	GroupID  uint
	UserID   uint
}

type GroupDeleted struct {
	CourseID  uint
	GroupID   uint
	MemberIDs []uint
	// QuizIDs are the quizzes whose overrides the deletion cascaded away,
	// captured before the cascade ran.
	QuizIDs []uint
}

type OverrideChanged struct {
	QuizID  uint
	UserID  *uint
	GroupID *uint
}

// AccessEventSubscriber receives the events above. The overdue scheduler is
// the one production subscriber; tests plug in their own.
type AccessEventSubscriber interface {
	HandleMembershipAdded(e MembershipAdded)
	HandleMembershipRemoved(e MembershipRemoved)
	HandleGroupDeleted(e GroupDeleted)
	HandleOverrideChanged(e OverrideChanged)
}

// EventDispatcher fans events out to its subscribers synchronously.
type EventDispatcher struct {
	subscribers []AccessEventSubscriber
}

func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{}
}

func (d *EventDispatcher) Subscribe(s AccessEventSubscriber) {
	d.subscribers = append(d.subscribers, s)
}

func (d *EventDispatcher) MembershipAdded(e MembershipAdded) {
	for _, s := range d.subscribers {
		s.HandleMembershipAdded(e)
	}
}

func (d *EventDispatcher) MembershipRemoved(e MembershipRemoved) {
	for _, s := range d.subscribers {
		s.HandleMembershipRemoved(e)
	}
}

func (d *EventDispatcher) GroupDeleted(e GroupDeleted) {
	for _, s := range d.subscribers {
		s.HandleGroupDeleted(e)
	}
}

func (d *EventDispatcher) OverrideChanged(e OverrideChanged) {
	for _, s := range d.subscribers {
		s.HandleOverrideChanged(e)
	}
}
