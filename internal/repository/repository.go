package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a row does not resolve.
	ErrNotFound = errors.New("record not found")
	// ErrStaleTicket is returned when the ticket status changed since it was read.
	ErrStaleTicket = errors.New("ticket status changed concurrently")
	// ErrOpenTicketExists is returned when an asset already has a non-terminal ticket.
	ErrOpenTicketExists = errors.New("asset already has an open ticket")
	// ErrInsufficientStock is returned when a decrement would make stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)

const openTicketConstraint = "uq_maintenance_tickets_open_asset"

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories groups every store the workflow touches.
type Repositories struct {
	Tickets     TicketRepository
	History     TicketHistoryRepository
	Notes       TicketNoteRepository
	Assets      AssetRepository
	Assignments AssignmentRepository
	Supplies    SupplyRepository
	Users       UserRepository
	Departments DepartmentRepository
}

// Store hands out repositories, optionally bound to a transaction.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn in one transaction. Any error rolls back every write made through repos.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// NewRepositories binds all repositories to db.
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Tickets:     NewTicketRepository(db),
		History:     NewTicketHistoryRepository(db),
		Notes:       NewTicketNoteRepository(db),
		Assets:      NewAssetRepository(db),
		Assignments: NewAssignmentRepository(db),
		Supplies:    NewSupplyRepository(db),
		Users:       NewUserRepository(db),
		Departments: NewDepartmentRepository(db),
	}
}

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Repos() Repositories {
	return NewRepositories(s.pool)
}

func (s *pgStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == openTicketConstraint {
		return ErrOpenTicketExists
	}
	return err
}
