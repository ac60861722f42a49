// Package catalog holds the in-memory metadata tables the retrieval core
// works against: the chunk table mirroring the vector index and the full
// procedure records keyed by source URL. Both are built once at startup and
// never mutated, so concurrent reads need no locking.
package catalog

import (
	"fmt"
	"strings"

	"egov-bot/internal/storage"
)

// Chunk is an indexed unit of procedure text.
type Chunk struct {
	ID       string
	ParentID string
	Source   string
	Text     string
}

// Parent returns the identifier of the full procedure this chunk belongs
// to, falling back to the source URL when no parent id was recorded.
func (c Chunk) Parent() string {
	if c.ParentID != "" {
		return c.ParentID
	}
	return c.Source
}

// field pairs a display label with an accessor, in the order fields appear
// in a formatted procedure.
type field struct {
	label string
	value func(storage.Procedure) string
}

var procedureFields = []field{
	{"Tên thủ tục", func(p storage.Procedure) string { return p.Name }},
	{"Cách thức thực hiện", func(p storage.Procedure) string { return p.Method }},
	{"Thành phần hồ sơ", func(p storage.Procedure) string { return p.Documents }},
	{"Trình tự thực hiện", func(p storage.Procedure) string { return p.Steps }},
	{"Cơ quan thực hiện", func(p storage.Procedure) string { return p.Agency }},
	{"Yêu cầu, điều kiện", func(p storage.Procedure) string { return p.Requirements }},
	{"Thủ tục liên quan", func(p storage.Procedure) string { return p.Related }},
	{"Nguồn", func(p storage.Procedure) string { return p.Source }},
}

// NotFoundText is returned when a parent id resolves to no procedure.
const NotFoundText = "Không tìm thấy thủ tục."

// Catalog is the read-only metadata store.
type Catalog struct {
	chunks     []Chunk
	chunkByID  map[string]Chunk
	procedures map[string]storage.Procedure
	// formatted caches rendered procedure text per parent id. Built eagerly
	// so lookups after startup are allocation-free and lock-free.
	formatted map[string]string
}

// New builds a Catalog from the loaded chunk and procedure rows.
func New(chunks []storage.Chunk, procedures []storage.Procedure) *Catalog {
	c := &Catalog{
		chunks:     make([]Chunk, 0, len(chunks)),
		chunkByID:  make(map[string]Chunk, len(chunks)),
		procedures: make(map[string]storage.Procedure, len(procedures)),
		formatted:  make(map[string]string, len(procedures)),
	}

	for _, row := range chunks {
		chunk := Chunk{ID: row.ID, ParentID: row.ParentID, Source: row.Source, Text: row.Text}
		c.chunks = append(c.chunks, chunk)
		c.chunkByID[chunk.ID] = chunk
	}

	for _, p := range procedures {
		c.procedures[p.Source] = p
		c.formatted[p.Source] = formatProcedure(p)
	}

	return c
}

// Chunk looks up a chunk by its index/point id. The boolean is false for
// identifiers the index returned but the metadata store does not know —
// the index may be stale relative to metadata, and callers must filter
// such ids out.
func (c *Catalog) Chunk(id string) (Chunk, bool) {
	chunk, ok := c.chunkByID[id]
	return chunk, ok
}

// ProcedureText returns the formatted full text of a procedure, or
// NotFoundText when the parent id is empty or unknown.
func (c *Catalog) ProcedureText(parentID string) string {
	if parentID == "" {
		return NotFoundText
	}
	if text, ok := c.formatted[parentID]; ok {
		return text
	}
	return NotFoundText
}

// ProcedureMethod returns the raw "cách thức thực hiện" field of a
// procedure, used as a stand-in text when a chunk carries none.
func (c *Catalog) ProcedureMethod(parentID string) string {
	return c.procedures[parentID].Method
}

// ProcedureName returns the display name of a procedure.
func (c *Catalog) ProcedureName(parentID string) (string, bool) {
	p, ok := c.procedures[parentID]
	if !ok || p.Name == "" {
		return "", false
	}
	return strings.TrimSpace(p.Name), true
}

// ChunkCount returns the number of indexed chunks.
func (c *Catalog) ChunkCount() int { return len(c.chunks) }

// ProcedureCount returns the number of full procedure records.
func (c *Catalog) ProcedureCount() int { return len(c.procedures) }

func formatProcedure(p storage.Procedure) string {
	parts := make([]string, 0, len(procedureFields))
	for _, f := range procedureFields {
		if v := strings.TrimSpace(f.value(p)); v != "" {
			parts = append(parts, fmt.Sprintf("%s:\n%s", f.label, v))
		}
	}
	if len(parts) == 0 {
		return "Không tìm thấy thông tin chi tiết."
	}
	return strings.Join(parts, "\n\n")
}
