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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paygate-io/paygate/config"
	"github.com/paygate-io/paygate/internal/apierror"
	"github.com/paygate-io/paygate/model"
)

const testColdAddress = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"

func TestGetDepositAddressMintsOnFirstUse(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	var deriveIndex int64 = -1
	datasource := &MockDataSource{
		mockEnsureDepositWallet: func(_ context.Context, userInvoice string, derive func(walletID int64) (string, error)) (*model.DerivedWallet, error) {
			assert.Equal(t, "alice", userInvoice)
			deriveIndex = 7
			address, err := derive(7)
			if err != nil {
				return nil, err
			}
			return &model.DerivedWallet{ID: 1, WalletID: 7, Payment: "ethereum", Invoice: address}, nil
		},
	}
	service := &Paygate{
		datasource: datasource,
		deriver:    &stubDeriver{addresses: map[uint32]string{7: testColdAddress}},
	}

	address, err := service.GetDepositAddress(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, testColdAddress, address)
	assert.Equal(t, int64(7), deriveIndex)
}

func TestGetDepositAddressIsStableAcrossCalls(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	calls := 0
	datasource := &MockDataSource{
		mockEnsureDepositWallet: func(_ context.Context, _ string, _ func(walletID int64) (string, error)) (*model.DerivedWallet, error) {
			calls++
			return &model.DerivedWallet{ID: 1, WalletID: 7, Payment: "ethereum", Invoice: testColdAddress}, nil
		},
	}
	service := &Paygate{
		datasource: datasource,
		deriver:    &stubDeriver{},
	}

	first, err := service.GetDepositAddress(context.Background(), "alice")
	require.NoError(t, err)
	second, err := service.GetDepositAddress(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestGetDepositAddressPropagatesStoreErrors(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	datasource := &MockDataSource{
		mockEnsureDepositWallet: func(_ context.Context, _ string, _ func(walletID int64) (string, error)) (*model.DerivedWallet, error) {
			return nil, apierror.NewAPIError(apierror.ErrUnavailable, "contention not resolved", nil)
		},
	}
	service := &Paygate{datasource: datasource, deriver: &stubDeriver{}}

	_, err := service.GetDepositAddress(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, apierror.IsTransient(err))
}
