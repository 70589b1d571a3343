package domain

import "github.com/shopspring/decimal"

// UnknownParticipantName is displayed for participants the backend has no user record for.
const UnknownParticipantName = "Unknown"

// Participant is a user taking part in an event.
type Participant struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// Share is one participant's owed portion of a split.
type Share struct {
	UserID     string          `json:"user_id"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
}

// Split is a single shared bill inside an event.
type Split struct {
	ID          string          `json:"split_id"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	Shares      []Share         `json:"shares"`
}

// SharesTotal returns the sum of all owed shares.
func (s *Split) SharesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, sh := range s.Shares {
		total = total.Add(sh.AmountOwed)
	}
	return total
}

// Event is a named collection of participants and splits.
// Dismissed is a display flag set by the creator; it has no effect on balances.
type Event struct {
	ID           string        `json:"event_id"`
	Name         string        `json:"name"`
	CreatedBy    string        `json:"created_by,omitempty"`
	Dismissed    bool          `json:"dismissed"`
	Participants []Participant `json:"participants"`
	Splits       []Split       `json:"splits"`
}

// ParticipantIDs returns participant user IDs in display order.
func (e *Event) ParticipantIDs() []string {
	ids := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// HasParticipant reports whether userID is a declared participant.
func (e *Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// DisplayName returns the participant's name, or UnknownParticipantName.
func (e *Event) DisplayName(userID string) string {
	for _, p := range e.Participants {
		if p.UserID == userID && p.DisplayName != "" {
			return p.DisplayName
		}
	}
	return UnknownParticipantName
}

// TotalSpent returns the sum of all split amounts.
func (e *Event) TotalSpent() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Splits {
		total = total.Add(s.Amount)
	}
	return total
}
