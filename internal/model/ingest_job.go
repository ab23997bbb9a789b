package model

// IngestJob is the queue payload that carries a document's extracted text to
// the background ingest worker. The document row already exists in PENDING
// when the job is published.
type IngestJob struct {
	DocumentID uint   `json:"document_id"`
	Filename   string `json:"filename"`
	Content    string `json:"content"`
}
