package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nubngpi/resultscraper/models"
)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects to connStr and verifies the connection.
func NewPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

// Initialize creates the students table and its roll index.
func (p *Postgres) Initialize(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			id         BIGSERIAL PRIMARY KEY,
			roll       TEXT NOT NULL,
			name       TEXT NOT NULL,
			img        TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("store: create students table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS students_roll_idx ON students (roll)`)
	if err != nil {
		return fmt.Errorf("store: create roll index: %w", err)
	}
	return nil
}

func (p *Postgres) FindByRoll(ctx context.Context, roll string) (*models.StudentRecord, error) {
	var rec models.StudentRecord
	err := p.Pool.QueryRow(ctx, `
		SELECT roll, name, img
		FROM students
		WHERE roll = $1
		ORDER BY id
		LIMIT 1
	`, roll).Scan(&rec.Roll, &rec.Name, &rec.Img)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: find student %s: %w", roll, err)
	}
	return &rec, nil
}

func (p *Postgres) Insert(ctx context.Context, rec *models.StudentRecord) error {
	_, err := p.Pool.Exec(ctx, `
		INSERT INTO students (roll, name, img)
		VALUES ($1, $2, $3)
	`, rec.Roll, rec.Name, rec.Img)
	if err != nil {
		return fmt.Errorf("store: insert student %s: %w", rec.Roll, err)
	}
	return nil
}

func (p *Postgres) Name() string { return "postgres" }

// Close releases the pool.
func (p *Postgres) Close() {
	p.Pool.Close()
}
