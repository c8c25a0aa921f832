package models

// Withdrawal represents a Prime withdrawal created for an outgoing transfer
type Withdrawal struct {
	ActivityId     string
	Symbol         string
	Amount         string
	Destination    string
	IdempotencyKey string
}
