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
	"embed"

	"go.opentelemetry.io/otel"

	"github.com/paygate-io/paygate/cache"
	"github.com/paygate-io/paygate/config"
	"github.com/paygate-io/paygate/database"
	"github.com/paygate-io/paygate/internal/web3"
)

var tracer = otel.Tracer("paygate.api")

//go:embed sql/*.sql
var SQLFiles embed.FS

// AddressDeriver is the external collaborator that mints deposit addresses
// and knows the gateway's hot payout address.
type AddressDeriver interface {
	ColdAddress(index uint32) (string, error)
	HotAddress() string
}

// Paygate is the order-intake and payout-dispatch core. All fields are
// process-scoped resources: opened once at startup, shared by every
// concurrent request, closed on shutdown.
type Paygate struct {
	queue      *Queue
	datasource database.IDataSource
	cache      cache.Cache
	deriver    AddressDeriver
	booker     *Booker
}

// NewPaygate wires the service from the loaded configuration and the
// provided datasource.
func NewPaygate(db database.IDataSource) (*Paygate, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	deriver, err := web3.NewDeriver(configuration.Ethereum)
	if err != nil {
		return nil, err
	}

	newCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}

	newQueue := NewQueue(configuration)
	booker := NewBooker(configuration.Booker.Url)

	return &Paygate{
		queue:      newQueue,
		datasource: db,
		cache:      newCache,
		deriver:    deriver,
		booker:     booker,
	}, nil
}

// HotAddress returns the checksummed address payouts are sent from.
func (p *Paygate) HotAddress() string {
	return p.deriver.HotAddress()
}

// Booker returns the RPC link to the settlement-processing peer.
func (p *Paygate) Booker() *Booker {
	return p.booker
}
