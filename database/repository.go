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

	"github.com/paygate-io/paygate/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	wallet // Interface for wallet and derived wallet operations
	order  // Interface for order intake operations
}

// wallet defines methods for allocating and resolving deposit wallets.
type wallet interface {
	// EnsureDepositWallet finds or creates the wallet for the user and its
	// derived deposit wallet for the settlement method, inside one
	// serializable transaction. derive is called at most once, with the
	// owning wallet id, when a new address has to be minted.
	EnsureDepositWallet(ctx context.Context, userInvoice string, derive func(walletID int64) (string, error)) (*model.DerivedWallet, error)
	// GetDerivedWalletByInvoice resolves a derived wallet by its address.
	GetDerivedWalletByInvoice(ctx context.Context, payment, invoice string) (*model.DerivedWallet, error)
}

// order defines methods for idempotent order intake.
type order interface {
	// CreateOrder persists the order with both tx legs exactly once. If an
	// order with the same external id already exists it is returned
	// unchanged instead of raising a duplicate-key error.
	CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error)
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	// GetOrderByJobID resolves an order from its settlement task id.
	GetOrderByJobID(ctx context.Context, jobID string) (*model.Order, error)
}
