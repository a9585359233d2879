package dto

// BatchEntryError reports one failed candidate entry by its position in the
// submitted batch, with the precise rule that was violated.
type BatchEntryError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BatchResult is the outcome of a batch ingest. Valid entries succeed
// together even when siblings failed; a storage fault fails the whole batch.
type BatchResult struct {
	SuccessCount    int               `json:"successCount"`
	Errors          []BatchEntryError `json:"errors"`
	CreatedEntryIDs []string          `json:"createdEntryIDs"`
}
