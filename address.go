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
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const depositAddressCacheTTL = 24 * time.Hour

// GetDepositAddress returns the stable deposit address for a user, minting
// the wallet pair on first use. Every call for the same user lands on the
// same address; the heavy lifting sits in the datasource's serializable
// find-or-create.
func (p *Paygate) GetDepositAddress(ctx context.Context, user string) (string, error) {
	ctx, span := tracer.Start(ctx, "Allocating Deposit Address")
	defer span.End()

	cacheKey := fmt.Sprintf("deposit-address:%s", user)
	var address string
	if p.cache != nil {
		if err := p.cache.Get(ctx, cacheKey, &address); err == nil && address != "" {
			return address, nil
		}
	}

	derived, err := p.datasource.EnsureDepositWallet(ctx, user, func(walletID int64) (string, error) {
		return p.deriver.ColdAddress(uint32(walletID))
	})
	if err != nil {
		return "", err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, cacheKey, derived.Invoice, depositAddressCacheTTL); err != nil {
			logrus.Warnf("failed to cache deposit address for %s: %v", user, err)
		}
	}
	return derived.Invoice, nil
}
