package service

import (
	"context"
	"database/sql"

	"eval-flow/internal/database"
	"eval-flow/internal/repository"
)

type sqlStores struct {
	db database.DBTX
}

// NewSQLStores returns stores that run each statement on its own
func NewSQLStores(db database.DBTX) Stores {
	return sqlStores{db: db}
}

func (s sqlStores) StepApprovals() StepApprovalStore {
	return repository.NewStepApprovalRepository(s.db)
}

func (s sqlStores) SecondaryApprovals() SecondaryApprovalStore {
	return repository.NewSecondaryStepApprovalRepository(s.db)
}

func (s sqlStores) RevisionRequests() RevisionRequestStore {
	return repository.NewRevisionRequestRepository(s.db)
}

type sqlTxRunner struct {
	db *sql.DB
}

// NewSQLTxRunner returns a TxRunner backed by database transactions
func NewSQLTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) WithTx(ctx context.Context, fn func(Stores) error) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(sqlStores{db: tx})
	})
}
