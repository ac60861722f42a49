package storage

// Chunk is a unit of indexed procedure text. ID matches the vector index
// point id for the same text. ParentID links the chunk to its full procedure
// record; when absent, Source (the crawl URL) identifies the parent.
type Chunk struct {
	ID       string
	ParentID string
	Source   string
	Text     string
	Position int
}

// Procedure is a full administrative procedure record, keyed by Source (the
// URL it was crawled from).
type Procedure struct {
	Source       string
	Name         string
	Method       string
	Documents    string
	Steps        string
	Agency       string
	Requirements string
	Related      string
}
