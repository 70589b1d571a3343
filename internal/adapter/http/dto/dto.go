package dto

// Amounts are rendered as fixed two-decimal strings, e.g. "12.50", "-3.00".

// EventURI binds the :id path parameter.
type EventURI struct {
	ID string `uri:"id" binding:"required,max=128,safe_id"`
}

// SnapshotListQuery binds the snapshot history query string.
type SnapshotListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// ChangeNotificationRequest is the body the backend posts on event changes.
type ChangeNotificationRequest struct {
	ChangeType string `json:"change_type" binding:"required,max=64,safe_id"`
	EventID    string `json:"event_id" binding:"required,max=128,safe_id"`
	OccurredAt int64  `json:"occurred_at" binding:"omitempty,gte=0"`
}

// BalanceResponse is one participant's net position.
type BalanceResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Amount      string `json:"amount"`
}

// TransferResponse is one suggested payment.
type TransferResponse struct {
	From     string `json:"from"`
	FromName string `json:"from_name,omitempty"`
	To       string `json:"to"`
	ToName   string `json:"to_name,omitempty"`
	Amount   string `json:"amount"`
}

// EventSummaryResponse is the dashboard view of one event.
type EventSummaryResponse struct {
	EventID    string             `json:"event_id"`
	EventName  string             `json:"event_name"`
	Dismissed  bool               `json:"dismissed"`
	SplitCount int                `json:"split_count"`
	TotalSpent string             `json:"total_spent"`
	IsSettled  bool               `json:"is_settled"`
	Balances   []BalanceResponse  `json:"balances"`
	Transfers  []TransferResponse `json:"transfers"`
	Imbalance  *string            `json:"imbalance,omitempty"`
}

// EventListResponse wraps the dashboard list.
type EventListResponse struct {
	Items []EventSummaryResponse `json:"items"`
	Total int                    `json:"total"`
}

// SettlementResponse is the transfer plan for one event.
type SettlementResponse struct {
	EventID   string             `json:"event_id"`
	Transfers []TransferResponse `json:"transfers"`
}

// SnapshotResponse is one recorded balance snapshot.
type SnapshotResponse struct {
	ID         string             `json:"id"`
	EventID    string             `json:"event_id"`
	RecordedBy string             `json:"recorded_by"`
	SplitCount int                `json:"split_count"`
	TotalSpent string             `json:"total_spent"`
	IsSettled  bool               `json:"is_settled"`
	Balances   []BalanceResponse  `json:"balances"`
	Transfers  []TransferResponse `json:"transfers"`
	CreatedAt  string             `json:"created_at"`
}

// SnapshotListResponse wraps snapshot history, newest first.
type SnapshotListResponse struct {
	Items []SnapshotResponse `json:"items"`
	Total int                `json:"total"`
}

// ChangeAcceptedResponse acknowledges a change notification.
type ChangeAcceptedResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}
