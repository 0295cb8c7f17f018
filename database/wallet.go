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

// EnsureDepositWallet finds or creates the user's wallet and its derived
// deposit wallet inside one serializable transaction. Two concurrent
// first-time calls cannot both mint an address: the losing transaction
// aborts on the uniqueness constraint or a serialization failure, and the
// retry observes the winner's committed rows instead of inserting again.
// That retry is exactly the "catch uniqueness violation, then re-read"
// mechanism; the violation is never surfaced to the caller.
func (d Datasource) EnsureDepositWallet(ctx context.Context, userInvoice string, derive func(walletID int64) (string, error)) (*model.DerivedWallet, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	var derived *model.DerivedWallet
	operation := func() error {
		dw, opErr := d.ensureDepositWalletTx(ctx, cnf.Payments.SourcePayment, cnf.Payments.SettlementPayment, userInvoice, derive)
		if opErr != nil {
			if isUniqueViolation(opErr) || isRetryableTxError(opErr) {
				return opErr
			}
			return backoff.Permanent(opErr)
		}
		derived = dw
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(newTxBackOff(), ctx)); err != nil {
		if isUniqueViolation(err) || isRetryableTxError(err) {
			return nil, apierror.NewAPIError(apierror.ErrUnavailable, "Could not allocate deposit address, safe to retry", err)
		}
		return nil, err
	}
	return derived, nil
}

// ensureDepositWalletTx is a single allocation attempt. It returns database
// errors raw so the caller can classify them; derivation collaborator
// failures pass through unchanged and roll back the whole attempt, so a
// wallet row never commits without its derived address.
func (d Datasource) ensureDepositWalletTx(ctx context.Context, sourcePayment, settlementPayment, userInvoice string, derive func(walletID int64) (string, error)) (*model.DerivedWallet, error) {
	tx, err := d.Conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	wallet := model.Wallet{Payment: sourcePayment, Invoice: userInvoice}
	err = tx.QueryRowContext(ctx, `
		SELECT id, created_at FROM wallets WHERE payment = $1 AND invoice = $2
	`, sourcePayment, userInvoice).Scan(&wallet.ID, &wallet.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO wallets (payment, invoice) VALUES ($1, $2) RETURNING id, created_at
		`, sourcePayment, userInvoice).Scan(&wallet.ID, &wallet.CreatedAt)
	}
	if err != nil {
		return nil, err
	}

	derived := model.DerivedWallet{WalletID: wallet.ID, Payment: settlementPayment}
	err = tx.QueryRowContext(ctx, `
		SELECT id, invoice, created_at FROM derived_wallets WHERE payment = $1 AND wallet_id = $2
	`, settlementPayment, wallet.ID).Scan(&derived.ID, &derived.Invoice, &derived.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		address, deriveErr := derive(wallet.ID)
		if deriveErr != nil {
			return nil, deriveErr
		}
		derived.Invoice = address
		err = tx.QueryRowContext(ctx, `
			INSERT INTO derived_wallets (wallet_id, payment, invoice) VALUES ($1, $2, $3) RETURNING id, created_at
		`, wallet.ID, settlementPayment, address).Scan(&derived.ID, &derived.CreatedAt)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &derived, nil
}

// GetDerivedWalletByInvoice resolves a derived wallet by its address. An
// inbound order is attributed to a wallet this way; absence means the
// deposit cannot be matched to any account.
func (d Datasource) GetDerivedWalletByInvoice(ctx context.Context, payment, invoice string) (*model.DerivedWallet, error) {
	derived := model.DerivedWallet{Payment: payment}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, wallet_id, invoice, created_at FROM derived_wallets WHERE payment = $1 AND invoice = $2
	`, payment, invoice).Scan(&derived.ID, &derived.WalletID, &derived.Invoice, &derived.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "No derived wallet for address", invoice)
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to resolve derived wallet", err)
	}
	return &derived, nil
}
