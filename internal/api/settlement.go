package api

import "github.com/mmynk/splitledger/internal/money"

type Settlement struct {
	ID          string      `json:"id"`
	GroupID     string      `json:"groupId"`
	FromUserID  string      `json:"fromUserId"`
	ToUserID    string      `json:"toUserId"`
	Amount      money.Money `json:"amount"`
	Currency    string      `json:"currency"`
	Status      string      `json:"status"`
	Note        string      `json:"note,omitempty"`
	CreatedBy   string      `json:"createdBy"`
	CreatedAt   int64       `json:"createdAt"`
	CompletedAt int64       `json:"completedAt,omitempty"`
}

type RecordSettlementRequest struct {
	GroupID    string      `json:"groupId"`
	FromUserID string      `json:"fromUserId"`
	ToUserID   string      `json:"toUserId"`
	Amount     money.Money `json:"amount"`
	Note       string      `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type CompleteSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type CompleteSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type CancelSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type CancelSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
	// Status filters by "pending", "completed" or "cancelled" when set.
	Status string `json:"status,omitempty"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}
