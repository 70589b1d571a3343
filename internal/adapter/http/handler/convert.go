package handler

import (
	"time"

	"ledgersplit/internal/adapter/http/dto"
	"ledgersplit/internal/core/domain"

	"github.com/shopspring/decimal"
)

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// names maps participant ids to display names; missing ids map to "".
type names map[string]string

func namesOf(participants []domain.Participant) names {
	n := make(names, len(participants))
	for _, p := range participants {
		name := p.DisplayName
		if name == "" {
			name = domain.UnknownParticipantName
		}
		n[p.UserID] = name
	}
	return n
}

func toBalances(balances domain.Balances, n names) []dto.BalanceResponse {
	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.BalanceResponse{
			UserID:      b.UserID,
			DisplayName: n[b.UserID],
			Amount:      formatAmount(b.Amount),
		})
	}
	return out
}

func toTransfers(transfers []domain.Transfer, n names) []dto.TransferResponse {
	out := make([]dto.TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, dto.TransferResponse{
			From:     t.From,
			FromName: n[t.From],
			To:       t.To,
			ToName:   n[t.To],
			Amount:   formatAmount(t.Amount),
		})
	}
	return out
}

// toSummaryResponse converts domain.EventSummary to DTO.
func toSummaryResponse(s *domain.EventSummary) dto.EventSummaryResponse {
	n := namesOf(s.Participants)
	resp := dto.EventSummaryResponse{
		EventID:    s.EventID,
		EventName:  s.EventName,
		Dismissed:  s.Dismissed,
		SplitCount: s.SplitCount,
		TotalSpent: formatAmount(s.TotalSpent),
		IsSettled:  s.IsSettled,
		Balances:   toBalances(s.Balances, n),
		Transfers:  toTransfers(s.Transfers, n),
	}
	if s.Imbalance != nil {
		imbalance := formatAmount(*s.Imbalance)
		resp.Imbalance = &imbalance
	}
	return resp
}

// toSnapshotResponse converts domain.BalanceSnapshot to DTO. Snapshots do not
// keep display names, so only ids are returned.
func toSnapshotResponse(s *domain.BalanceSnapshot) dto.SnapshotResponse {
	return dto.SnapshotResponse{
		ID:         s.ID.String(),
		EventID:    s.EventID,
		RecordedBy: s.RecordedBy,
		SplitCount: s.SplitCount,
		TotalSpent: formatAmount(s.TotalSpent),
		IsSettled:  s.IsSettled,
		Balances:   toBalances(s.Balances, nil),
		Transfers:  toTransfers(s.Transfers, nil),
		CreatedAt:  s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
