package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"ApprovalBot/internal/config"
	"ApprovalBot/internal/domain"
	"ApprovalBot/internal/platform"
	"ApprovalBot/internal/platform/postgres/migrations"
)

// StatusAuthor is recorded as the author of status comments this store
// creates.
const StatusAuthor = "approval-bot"

var (
	_ platform.Platform      = (*Store)(nil)
	_ platform.Ingester      = (*Store)(nil)
	_ platform.HealthChecker = (*Store)(nil)
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.applyMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) applyMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Files)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) FetchRoster(ctx context.Context, role domain.Role) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT username
		FROM roster_members
		WHERE role = $1
		ORDER BY position`, string(role))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrRosterFetch, role, err)
	}

	members, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrRosterFetch, role, err)
	}
	return members, nil
}

func (s *Store) FetchComments(ctx context.Context, thread int) ([]domain.Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT comment_id, author, COALESCE(body, '')
		FROM comments
		WHERE thread_id = $1
		ORDER BY comment_id`, thread)
	if err != nil {
		return nil, fmt.Errorf("%w: thread %d: %w", domain.ErrCommentFetch, thread, err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		c := domain.Comment{Position: len(comments)}
		if err := rows.Scan(&c.ID, &c.Author, &c.Body); err != nil {
			return nil, fmt.Errorf("%w: thread %d: %w", domain.ErrCommentFetch, thread, err)
		}
		comments = append(comments, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: thread %d: %w", domain.ErrCommentFetch, thread, rows.Err())
	}
	return comments, nil
}

func (s *Store) ReplaceLabels(ctx context.Context, thread int, labels []string) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := ensureThread(ctx, tx, thread); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM thread_labels WHERE thread_id = $1`, thread); err != nil {
			return err
		}
		for _, label := range labels {
			if _, err := tx.Exec(ctx, `
				INSERT INTO thread_labels (thread_id, label)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, thread, label); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace labels on thread %d: %w", thread, err)
	}
	return nil
}

func (s *Store) UpsertComment(ctx context.Context, thread int, existingID *int64, body string) error {
	if existingID != nil {
		tag, err := s.pool.Exec(ctx, `
			UPDATE comments
			SET body = $3,
			    updated_at = NOW()
			WHERE comment_id = $1 AND thread_id = $2
		`, *existingID, thread, body)
		if err != nil {
			return fmt.Errorf("edit comment %d: %w", *existingID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("edit comment %d: %w", *existingID, domain.ErrCommentNotFound)
		}
		return nil
	}

	if _, err := s.AddComment(ctx, thread, StatusAuthor, body); err != nil {
		return err
	}
	return nil
}

func (s *Store) SetRoster(ctx context.Context, role domain.Role, members []string) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM roster_members WHERE role = $1`, string(role)); err != nil {
			return err
		}
		for i, member := range members {
			if _, err := tx.Exec(ctx, `
				INSERT INTO roster_members (role, username, position)
				VALUES ($1, $2, $3)
				ON CONFLICT (role, username) DO NOTHING
			`, string(role), member, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s roster: %w", role, err)
	}
	return nil
}

func (s *Store) AddComment(ctx context.Context, thread int, author, body string) (domain.Comment, error) {
	comment := domain.Comment{Author: author, Body: body}
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := ensureThread(ctx, tx, thread); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM comments WHERE thread_id = $1
		`, thread).Scan(&comment.Position); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO comments (thread_id, author, body)
			VALUES ($1, $2, $3)
			RETURNING comment_id
		`, thread, author, body).Scan(&comment.ID)
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("add comment to thread %d: %w", thread, err)
	}
	return comment, nil
}

func (s *Store) Labels(ctx context.Context, thread int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT label
		FROM thread_labels
		WHERE thread_id = $1
		ORDER BY label`, thread)
	if err != nil {
		return nil, fmt.Errorf("query labels of thread %d: %w", thread, err)
	}
	labels, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan labels of thread %d: %w", thread, err)
	}
	return labels, nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func ensureThread(ctx context.Context, tx pgx.Tx, thread int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO threads (thread_id)
		VALUES ($1)
		ON CONFLICT (thread_id) DO NOTHING
	`, thread)
	return err
}

func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
