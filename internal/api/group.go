package api

import "github.com/mmynk/splitledger/internal/money"

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Currency    string   `json:"currency"`
	Members     []string `json:"members"`
	CreatedBy   string   `json:"createdBy"`
	CreatedAt   int64    `json:"createdAt"`
}

// Debt is a gross amount owed to or by a counterparty.
type Debt struct {
	ParticipantID string      `json:"participantId"`
	Amount        money.Money `json:"amount"`
}

// Balance is a member's position in a group. Positive Net means the member is owed money.
//
// Owes and OwedBy come from expenses only. Completed settlements are listed apart in
// Paid and Received, so Net = sum(OwedBy) - sum(Owes) + sum(Paid) - sum(Received).
type Balance struct {
	ParticipantID string      `json:"participantId"`
	Net           money.Money `json:"net"`
	Owes          []Debt      `json:"owes"`
	OwedBy        []Debt      `json:"owedBy"`
	Paid          []Debt      `json:"paid"`
	Received      []Debt      `json:"received"`
}

// SuggestedSettlement is a payment that would move balances toward zero.
type SuggestedSettlement struct {
	FromUserID string      `json:"fromUserId"`
	ToUserID   string      `json:"toUserId"`
	Amount     money.Money `json:"amount"`
	Currency   string      `json:"currency"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Currency defaults to the server's default currency.
	Currency string `json:"currency,omitempty"`
	// Members besides the caller, who is always added first.
	Members []string `json:"members,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// UpdateGroupRequest replaces a group's name and description. An empty Currency keeps
// the current one.
type UpdateGroupRequest struct {
	GroupID     string `json:"groupId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

type UpdateGroupResponse struct {
	Group *Group `json:"group"`
}

type AddMembersRequest struct {
	GroupID string   `json:"groupId"`
	Members []string `json:"members"`
}

type AddMembersResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	GroupID     string                `json:"groupId"`
	Currency    string                `json:"currency"`
	Balances    []Balance             `json:"balances"`
	Settlements []SuggestedSettlement `json:"settlements"`
	// Strategy names the optimizer that produced Settlements.
	Strategy string `json:"strategy"`
}
