// Package models defines the persisted domain models for splitledger.
//
// Models are plain data. They hold no behaviour beyond small constructors and
// validation helpers; all money arithmetic lives in the calculator package,
// which works on its own minimal types and is fed by the service layer.
//
// # Relationships
//
// Models reference each other by ID strings rather than pointers:
//   - Group.Members holds participant IDs (registered user IDs or free-form names)
//   - Expense.GroupID, Expense.PayerID and Split.ParticipantID point into a group's members
//   - Settlement.FromUserID / ToUserID are members of Settlement.GroupID
//
// # Money
//
// Every amount is a money.Money (two fractional digits, decimal arithmetic).
// Amounts are persisted as fixed-point TEXT.
package models
