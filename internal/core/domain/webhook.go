package domain

// ChangeType is the kind of mutation the backend reports for an event.
type ChangeType string

const (
	ChangeSplitCreated     ChangeType = "SPLIT_CREATED"
	ChangeSplitUpdated     ChangeType = "SPLIT_UPDATED"
	ChangeSplitDeleted     ChangeType = "SPLIT_DELETED"
	ChangeParticipantAdded ChangeType = "PARTICIPANT_ADDED"
	ChangeEventUpdated     ChangeType = "EVENT_UPDATED"
	ChangeEventDismissed   ChangeType = "EVENT_DISMISSED"
)

// IsKnown returns true for change types the service reacts to.
func (c ChangeType) IsKnown() bool {
	switch c {
	case ChangeSplitCreated, ChangeSplitUpdated, ChangeSplitDeleted,
		ChangeParticipantAdded, ChangeEventUpdated, ChangeEventDismissed:
		return true
	}
	return false
}

// ChangeNotification is the payload the backend posts when an event changes.
type ChangeNotification struct {
	ChangeType ChangeType `json:"change_type"`
	EventID    string     `json:"event_id"`
	OccurredAt int64      `json:"occurred_at"` // Unix timestamp
}
