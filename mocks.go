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

package paygate

import (
	"context"

	"github.com/paygate-io/paygate/model"
)

// MockDataSource lets tests swap individual datasource operations without
// a database behind them.
type MockDataSource struct {
	mockEnsureDepositWallet       func(ctx context.Context, userInvoice string, derive func(walletID int64) (string, error)) (*model.DerivedWallet, error)
	mockGetDerivedWalletByInvoice func(ctx context.Context, payment, invoice string) (*model.DerivedWallet, error)
	mockCreateOrder               func(ctx context.Context, order *model.Order) (*model.Order, error)
	mockGetOrderByID              func(ctx context.Context, id string) (*model.Order, error)
	mockGetOrderByJobID           func(ctx context.Context, jobID string) (*model.Order, error)
}

func (m *MockDataSource) EnsureDepositWallet(ctx context.Context, userInvoice string, derive func(walletID int64) (string, error)) (*model.DerivedWallet, error) {
	return m.mockEnsureDepositWallet(ctx, userInvoice, derive)
}

func (m *MockDataSource) GetDerivedWalletByInvoice(ctx context.Context, payment, invoice string) (*model.DerivedWallet, error) {
	return m.mockGetDerivedWalletByInvoice(ctx, payment, invoice)
}

func (m *MockDataSource) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	return m.mockCreateOrder(ctx, order)
}

func (m *MockDataSource) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	return m.mockGetOrderByID(ctx, id)
}

func (m *MockDataSource) GetOrderByJobID(ctx context.Context, jobID string) (*model.Order, error) {
	return m.mockGetOrderByJobID(ctx, jobID)
}

type stubDeriver struct {
	addresses map[uint32]string
	hot       string
}

func (s *stubDeriver) ColdAddress(index uint32) (string, error) {
	return s.addresses[index], nil
}

func (s *stubDeriver) HotAddress() string {
	return s.hot
}
