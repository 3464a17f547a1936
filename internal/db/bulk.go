package db

// Document is a single source document for bulk indexing.
type Document struct {
	ID   string
	Body []byte
}

// BulkStats summarizes a finished bulk session.
type BulkStats struct {
	Added   uint64
	Indexed uint64
	Failed  uint64
}
