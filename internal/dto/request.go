package dto

// TransferTask is the kafka payload handed from the API to the worker.
type TransferTask struct {
	TransferID string `json:"transfer_id"`
}
