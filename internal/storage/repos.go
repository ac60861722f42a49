package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore reads chunk metadata.
type ChunkStore interface {
	// ListAll returns every chunk in index order.
	ListAll(ctx context.Context) ([]Chunk, error)
}

// ProcedureStore reads full procedure records.
type ProcedureStore interface {
	// ListAll returns every procedure record.
	ListAll(ctx context.Context) ([]Procedure, error)
}

// ChunkRepo implements ChunkStore over SQLite.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ListAll returns every chunk ordered by position.
func (r *ChunkRepo) ListAll(ctx context.Context) ([]Chunk, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, COALESCE(parent_id, ''), COALESCE(source, ''), text, position
		 FROM chunks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Source, &c.Text, &c.Position); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunks: %w", err)
	}
	return chunks, nil
}

// ProcedureRepo implements ProcedureStore over SQLite.
type ProcedureRepo struct {
	db *sql.DB
}

// NewProcedureRepo creates a new ProcedureRepo.
func NewProcedureRepo(db *sql.DB) *ProcedureRepo {
	return &ProcedureRepo{db: db}
}

// ListAll returns every procedure record.
func (r *ProcedureRepo) ListAll(ctx context.Context) ([]Procedure, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT source, COALESCE(name, ''), COALESCE(method, ''), COALESCE(documents, ''),
		        COALESCE(steps, ''), COALESCE(agency, ''), COALESCE(requirements, ''), COALESCE(related, '')
		 FROM procedures`)
	if err != nil {
		return nil, fmt.Errorf("failed to query procedures: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var procedures []Procedure
	for rows.Next() {
		var p Procedure
		if err := rows.Scan(&p.Source, &p.Name, &p.Method, &p.Documents,
			&p.Steps, &p.Agency, &p.Requirements, &p.Related); err != nil {
			return nil, fmt.Errorf("failed to scan procedure: %w", err)
		}
		procedures = append(procedures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate procedures: %w", err)
	}
	return procedures, nil
}
