// Package repository persists finished screening outcomes to PostgreSQL
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentscout/talentscout-api/internal/models"
	"github.com/talentscout/talentscout-api/pkg/errors"
)

// CandidateRepository handles candidate screening record data access
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// Archive inserts the outcome of a finished screening. Re-archiving the same
// conversation overwrites the previous record, so a retried completion never
// produces duplicates.
func (r *CandidateRepository) Archive(ctx context.Context, record *models.CandidateRecord) error {
	query := `
		INSERT INTO candidates (
			conversation_id, name, email, phone, experience_years,
			position, tech_stack, score, decision, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (conversation_id) DO UPDATE SET
			score = EXCLUDED.score,
			decision = EXCLUDED.decision,
			finished_at = EXCLUDED.finished_at`

	_, err := r.pool.Exec(ctx, query,
		record.ConversationID,
		record.Name,
		record.Email,
		record.Phone,
		record.ExperienceYears,
		record.Position,
		record.TechStack,
		record.Score,
		record.Decision,
		record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("archive candidate: %w", err)
	}

	return nil
}

// GetByConversationID fetches one archived screening outcome
func (r *CandidateRepository) GetByConversationID(ctx context.Context, conversationID string) (*models.CandidateRecord, error) {
	query := `
		SELECT conversation_id, name, email, phone, experience_years,
		       position, tech_stack, score, decision, finished_at
		FROM candidates
		WHERE conversation_id = $1`

	record := &models.CandidateRecord{}
	err := r.pool.QueryRow(ctx, query, conversationID).Scan(
		&record.ConversationID,
		&record.Name,
		&record.Email,
		&record.Phone,
		&record.ExperienceYears,
		&record.Position,
		&record.TechStack,
		&record.Score,
		&record.Decision,
		&record.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFoundError(fmt.Sprintf("candidate record %s", conversationID))
		}
		return nil, fmt.Errorf("get candidate record: %w", err)
	}

	return record, nil
}
