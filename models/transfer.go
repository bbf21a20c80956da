package models

// TransferResult represents the outcome of a member-to-member transfer
type TransferResult struct {
	Amount      int64
	FromBalance int64
	ToBalance   int64
}
