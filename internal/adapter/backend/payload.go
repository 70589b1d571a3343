package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ledger"

	"github.com/shopspring/decimal"
)

// flexibleID accepts ids sent as JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", b)
	}
	*f = flexibleID(n.String())
	return nil
}

// amount accepts JSON numbers and numeric strings. Valid stays false when
// the field is absent, null or an empty string.
type amount struct {
	Value decimal.Decimal
	Valid bool
}

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return &ledger.ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a finite number", s)}
	}
	if err := checkMoneyRange(v); err != nil {
		return err
	}
	a.Value, a.Valid = v, true
	return nil
}

const (
	// maxAmountScale is the finest fraction accepted, in decimal places.
	maxAmountScale = 8
	// maxAmountDigits bounds the integer part of an amount.
	maxAmountDigits = 15
)

// checkMoneyRange rejects amounts outside a sane money range. Arithmetic on
// a decimal rescales to its exponent, so an extreme exponent in a short
// string costs unbounded memory and time downstream. Only the exponent and
// coefficient length are inspected here.
func checkMoneyRange(v decimal.Decimal) error {
	exp := v.Exponent()
	if exp < -maxAmountScale {
		return &ledger.ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("more than %d decimal places", maxAmountScale),
		}
	}
	if int64(v.NumDigits())+int64(exp) > maxAmountDigits {
		return &ledger.ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("more than %d integer digits", maxAmountDigits),
		}
	}
	return nil
}

type rawUser struct {
	UserID   flexibleID `json:"user_id"`
	ID       flexibleID `json:"id"`
	Username string     `json:"username"`
	Name     string     `json:"name"`
}

func (u *rawUser) id() string {
	if u == nil {
		return ""
	}
	return firstNonEmpty(string(u.UserID), string(u.ID))
}

func (u *rawUser) displayName() string {
	if u == nil {
		return ""
	}
	return firstNonEmpty(u.Username, u.Name)
}

// rawMember is the shared shape of event participants and split shares:
// a flat user_id, or a nested user / users object.
type rawMember struct {
	UserID     flexibleID `json:"user_id"`
	Username   string     `json:"username"`
	User       *rawUser   `json:"user"`
	Users      *rawUser   `json:"users"`
	AmountOwed amount     `json:"amount_owed"`
}

func (m *rawMember) id() string {
	return firstNonEmpty(string(m.UserID), m.User.id(), m.Users.id())
}

func (m *rawMember) displayName() string {
	return firstNonEmpty(m.Username, m.User.displayName(), m.Users.displayName())
}

type rawSplit struct {
	SplitID           flexibleID  `json:"split_id"`
	ID                flexibleID  `json:"id"`
	Description       string      `json:"description"`
	Amount            amount      `json:"amount"`
	PaidBy            flexibleID  `json:"paid_by"`
	SplitParticipants []rawMember `json:"split_participants"`
	Shares            []rawMember `json:"shares"`
}

type rawEvent struct {
	EventID      flexibleID  `json:"event_id"`
	ID           flexibleID  `json:"id"`
	Name         string      `json:"name"`
	CreatedBy    flexibleID  `json:"created_by"`
	Dismissed    bool        `json:"dismissed"`
	Participants []rawMember `json:"participants"`
	Splits       []rawSplit  `json:"splits"`
}

type rawEventList struct {
	Events []rawEvent `json:"events"`
}

// ParseEvent decodes one backend event and validates it for the ledger.
func ParseEvent(data []byte) (*domain.Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}

	event, err := raw.normalize()
	if err != nil {
		return nil, err
	}
	if err := ledger.Validate(event); err != nil {
		return nil, err
	}
	return event, nil
}

// ParseEvents decodes a JSON array of events, or an object wrapping it
// under "events".
func ParseEvents(data []byte) ([]domain.Event, error) {
	var raws []rawEvent
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped rawEventList
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decoding event list: %w", err)
		}
		raws = wrapped.Events
	} else if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("decoding event list: %w", err)
	}

	events := make([]domain.Event, 0, len(raws))
	for i := range raws {
		event, err := raws[i].normalize()
		if err != nil {
			return nil, err
		}
		if err := ledger.Validate(event); err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, nil
}

func (r *rawEvent) normalize() (*domain.Event, error) {
	event := &domain.Event{
		ID:           firstNonEmpty(string(r.EventID), string(r.ID)),
		Name:         r.Name,
		CreatedBy:    string(r.CreatedBy),
		Dismissed:    r.Dismissed,
		Participants: make([]domain.Participant, 0, len(r.Participants)),
		Splits:       make([]domain.Split, 0, len(r.Splits)),
	}

	seen := make(map[string]struct{}, len(r.Participants))
	for i := range r.Participants {
		id := r.Participants[i].id()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		name := r.Participants[i].displayName()
		if name == "" {
			name = domain.UnknownParticipantName
		}
		event.Participants = append(event.Participants, domain.Participant{UserID: id, DisplayName: name})
	}

	for i := range r.Splits {
		split, err := r.Splits[i].normalize(i)
		if err != nil {
			return nil, err
		}
		event.Splits = append(event.Splits, split)
	}

	return event, nil
}

func (r *rawSplit) normalize(pos int) (domain.Split, error) {
	id := firstNonEmpty(string(r.SplitID), string(r.ID))
	if !r.Amount.Valid {
		ref := id
		if ref == "" {
			ref = fmt.Sprintf("#%d", pos)
		}
		return domain.Split{}, &ledger.ValidationError{SplitID: ref, Field: "amount", Reason: "missing"}
	}

	members := r.SplitParticipants
	if len(members) == 0 {
		members = r.Shares
	}

	split := domain.Split{
		ID:          id,
		Description: r.Description,
		Amount:      r.Amount.Value,
		PaidBy:      string(r.PaidBy),
		Shares:      make([]domain.Share, 0, len(members)),
	}
	for i := range members {
		owed := decimal.Zero
		if members[i].AmountOwed.Valid {
			owed = members[i].AmountOwed.Value
		}
		split.Shares = append(split.Shares, domain.Share{UserID: members[i].id(), AmountOwed: owed})
	}
	return split, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
