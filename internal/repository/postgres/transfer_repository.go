package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/domain"
)

const transferColumns = `
	id, content_filename, style_filename, content_path, style_path,
	output_path, mode, status, width, height, error_message,
	created_at, updated_at, completed_at`

type transferRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewTransferRepository(db *dbpg.DB, strategy retry.Strategy) domain.TransferRepository {
	return &transferRepository{
		db:       db,
		strategy: strategy,
	}
}

func (r *transferRepository) Create(ctx context.Context, t *domain.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecWithRetry(ctx, r.strategy, query,
		t.ID,
		t.ContentFilename,
		t.StyleFilename,
		t.ContentPath,
		t.StylePath,
		nullString(t.OutputPath),
		t.Mode,
		t.Status,
		nullInt(t.Width),
		nullInt(t.Height),
		nullString(t.ErrorMessage),
		t.CreatedAt,
		t.UpdatedAt,
		t.CompletedAt,
	)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", t.ID).Msg("failed to create transfer")
		return fmt.Errorf("create transfer: %w", err)
	}

	zlog.Logger.Info().Str("transfer_id", t.ID).Str("mode", string(t.Mode)).Msg("transfer created")
	return nil
}

func (r *transferRepository) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	t, err := scanTransfer(r.db.Master.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTransferNotFound
	}
	if err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", id).Msg("failed to find transfer")
		return nil, fmt.Errorf("find transfer: %w", err)
	}
	return t, nil
}

func (r *transferRepository) Update(ctx context.Context, t *domain.Transfer) error {
	query := `
		UPDATE transfers
		SET content_filename = $2,
		    style_filename = $3,
		    content_path = $4,
		    style_path = $5,
		    output_path = $6,
		    mode = $7,
		    status = $8,
		    width = $9,
		    height = $10,
		    error_message = $11,
		    completed_at = $12,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecWithRetry(ctx, r.strategy, query,
		t.ID,
		t.ContentFilename,
		t.StyleFilename,
		t.ContentPath,
		t.StylePath,
		nullString(t.OutputPath),
		t.Mode,
		t.Status,
		nullInt(t.Width),
		nullInt(t.Height),
		nullString(t.ErrorMessage),
		t.CompletedAt,
	)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", t.ID).Msg("failed to update transfer")
		return fmt.Errorf("update transfer: %w", err)
	}

	return expectOneRow(result)
}

func (r *transferRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecWithRetry(ctx, r.strategy, `DELETE FROM transfers WHERE id = $1`, id)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", id).Msg("failed to delete transfer")
		return fmt.Errorf("delete transfer: %w", err)
	}

	if err := expectOneRow(result); err != nil {
		return err
	}

	zlog.Logger.Info().Str("transfer_id", id).Msg("transfer deleted")
	return nil
}

func (r *transferRepository) FindByStatus(ctx context.Context, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, status, limit, offset)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("status", string(status)).Msg("failed to find transfers by status")
		return nil, fmt.Errorf("find transfers by status: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

func (r *transferRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, limit, offset)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to list transfers")
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

func (r *transferRepository) UpdateStatus(ctx context.Context, id string, status domain.TransferStatus) error {
	query := `UPDATE transfers SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecWithRetry(ctx, r.strategy, query, id, status)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", id).Msg("failed to update status")
		return fmt.Errorf("update status: %w", err)
	}

	return expectOneRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*domain.Transfer, error) {
	var t domain.Transfer
	var outputPath, errorMsg sql.NullString
	var width, height sql.NullInt32
	var completedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.ContentFilename,
		&t.StyleFilename,
		&t.ContentPath,
		&t.StylePath,
		&outputPath,
		&t.Mode,
		&t.Status,
		&width,
		&height,
		&errorMsg,
		&t.CreatedAt,
		&t.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	t.OutputPath = outputPath.String
	t.ErrorMessage = errorMsg.String
	t.Width = int(width.Int32)
	t.Height = int(height.Int32)
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}

	return &t, nil
}

func scanTransfers(rows *sql.Rows) ([]*domain.Transfer, error) {
	var transfers []*domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return transfers, nil
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrTransferNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(i int) sql.NullInt32 {
	if i == 0 {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(i), Valid: true}
}
