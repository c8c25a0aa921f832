package models

// SettlementReport summarizes one settlement pass
type SettlementReport struct {
	DuePaymentsSettled int `json:"duePaymentsSettled"`
	TransfersCompleted int `json:"transfersCompleted"`
	TransfersFailed    int `json:"transfersFailed"`
	TransfersPending   int `json:"transfersPending"`
}
