/*
Copyright 2026 Paygate Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cenkalti/backoff/v4"

	"github.com/paygate-io/paygate/config"
	"github.com/paygate-io/paygate/internal/apierror"
	"github.com/paygate-io/paygate/model"
)

// CreateOrder persists the order header and both tx legs as one atomic unit
// under serializable isolation. The caller-supplied order id is the
// idempotency anchor: there is deliberately no existence check up front, a
// duplicate submission runs into the primary key, and the violation is
// resolved by re-reading the committed order. This keeps concurrent
// duplicate submissions free of check-then-act races.
func (d Datasource) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	var created *model.Order
	operation := func() error {
		o, opErr := d.createOrderTx(ctx, cnf.Payments.SettlementPayment, order)
		if opErr != nil {
			if isRetryableTxError(opErr) {
				return opErr
			}
			return backoff.Permanent(opErr)
		}
		created = o
		return nil
	}

	err = backoff.Retry(operation, backoff.WithContext(newTxBackOff(), ctx))
	if err != nil {
		if isUniqueViolation(err) {
			// Already submitted: hand back the committed order, job id and
			// all, so the caller can converge on the existing job.
			return d.GetOrderByID(ctx, order.ID)
		}
		if isRetryableTxError(err) {
			return nil, apierror.NewAPIError(apierror.ErrUnavailable, "Could not commit order, safe to retry", err)
		}
		return nil, err
	}
	return created, nil
}

func (d Datasource) createOrderTx(ctx context.Context, settlementPayment string, order *model.Order) (*model.Order, error) {
	tx, err := d.Conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	created := *order

	if order.Flow == model.FlowIn {
		if order.InTx.ToAddress == nil {
			return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Inbound order needs a destination address", order.ID)
		}
		var walletID int64
		err = tx.QueryRowContext(ctx, `
			SELECT wallet_id FROM derived_wallets WHERE payment = $1 AND invoice = $2
		`, settlementPayment, *order.InTx.ToAddress).Scan(&walletID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrUnprocessable, "No derived wallet for deposit address", *order.InTx.ToAddress)
		}
		if err != nil {
			return nil, err
		}
		created.WalletID = &walletID
	}

	created.InTx, err = insertTx(ctx, tx, order.InTx)
	if err != nil {
		return nil, err
	}
	created.OutTx, err = insertTx(ctx, tx, order.OutTx)
	if err != nil {
		return nil, err
	}

	created.JobID = model.GenerateUUIDWithSuffix("job")
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_type, flow, job_id, wallet_id, in_tx_id, out_tx_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, created.ID, created.Type, created.Flow, created.JobID, created.WalletID, created.InTx.ID, created.OutTx.ID).Scan(&created.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &created, nil
}

func insertTx(ctx context.Context, tx *sql.Tx, leg model.Tx) (model.Tx, error) {
	inserted := leg
	err := tx.QueryRowContext(ctx, `
		INSERT INTO txs (coin, tx_id, from_address, to_address, amount, tx_created_at, error, confirmations, max_confirmations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, leg.Coin, leg.TxID, leg.FromAddress, leg.ToAddress, leg.Amount, leg.TxCreatedAt, leg.Error, leg.Confirmations, leg.MaxConfirmations).Scan(&inserted.ID)
	if err != nil {
		return model.Tx{}, err
	}
	return inserted, nil
}

// GetOrderByID loads an order together with both tx legs.
func (d Datasource) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT o.id, o.order_type, o.flow, o.job_id, o.wallet_id, o.created_at,
			i.id, i.coin, i.tx_id, i.from_address, i.to_address, i.amount, i.tx_created_at, i.error, i.confirmations, i.max_confirmations,
			t.id, t.coin, t.tx_id, t.from_address, t.to_address, t.amount, t.tx_created_at, t.error, t.confirmations, t.max_confirmations
		FROM orders o
		JOIN txs i ON i.id = o.in_tx_id
		JOIN txs t ON t.id = o.out_tx_id
		WHERE o.id = $1
	`, id)
	return scanOrder(row, id)
}

// GetOrderByJobID resolves the order a settlement job belongs to. Queue
// tasks carry no payload, so the worker only knows the task id.
func (d Datasource) GetOrderByJobID(ctx context.Context, jobID string) (*model.Order, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT o.id, o.order_type, o.flow, o.job_id, o.wallet_id, o.created_at,
			i.id, i.coin, i.tx_id, i.from_address, i.to_address, i.amount, i.tx_created_at, i.error, i.confirmations, i.max_confirmations,
			t.id, t.coin, t.tx_id, t.from_address, t.to_address, t.amount, t.tx_created_at, t.error, t.confirmations, t.max_confirmations
		FROM orders o
		JOIN txs i ON i.id = o.in_tx_id
		JOIN txs t ON t.id = o.out_tx_id
		WHERE o.job_id = $1
	`, jobID)
	return scanOrder(row, jobID)
}

func scanOrder(row *sql.Row, key string) (*model.Order, error) {
	order := model.Order{}
	var walletID sql.NullInt64
	err := row.Scan(
		&order.ID, &order.Type, &order.Flow, &order.JobID, &walletID, &order.CreatedAt,
		&order.InTx.ID, &order.InTx.Coin, &order.InTx.TxID, &order.InTx.FromAddress, &order.InTx.ToAddress, &order.InTx.Amount, &order.InTx.TxCreatedAt, &order.InTx.Error, &order.InTx.Confirmations, &order.InTx.MaxConfirmations,
		&order.OutTx.ID, &order.OutTx.Coin, &order.OutTx.TxID, &order.OutTx.FromAddress, &order.OutTx.ToAddress, &order.OutTx.Amount, &order.OutTx.TxCreatedAt, &order.OutTx.Error, &order.OutTx.Confirmations, &order.OutTx.MaxConfirmations,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "Order not found", key)
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to load order", err)
	}
	if walletID.Valid {
		order.WalletID = &walletID.Int64
	}
	return &order, nil
}
