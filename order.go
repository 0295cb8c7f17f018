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

	"github.com/paygate-io/paygate/internal/apierror"
	"github.com/paygate-io/paygate/internal/web3"
	"github.com/paygate-io/paygate/model"
)

// NewInOrder records an inbound settlement order and guarantees its
// background job. The inbound leg lives on the settlement chain, so both
// of its addresses are normalized to checksum form before anything touches
// the store; the outbound leg is stored verbatim.
func (p *Paygate) NewInOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "Recording Inbound Order")
	defer span.End()

	order.Flow = model.FlowIn
	if err := checksumLeg(&order.InTx); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid inbound address", err)
	}

	created, err := p.datasource.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	// The enqueue sits outside the order's transaction. If it fails here
	// the order stays committed and a replay of the same intake converges
	// on exactly one job.
	if err := p.queue.EnsureOrderJob(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// NewOutOrder records a payout order. Only the outbound leg lives on the
// settlement chain; its from-address may stay unset until a payout address
// is assigned externally.
func (p *Paygate) NewOutOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "Recording Outbound Order")
	defer span.End()

	order.Flow = model.FlowOut
	if err := checksumLeg(&order.OutTx); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid outbound address", err)
	}

	created, err := p.datasource.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	if err := p.queue.EnsureOrderJob(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// GetOrder loads a committed order by its external id.
func (p *Paygate) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return p.datasource.GetOrderByID(ctx, id)
}

// GetOrderByJobID loads the order behind a settlement task id. The worker
// uses it to turn a queue task back into domain state.
func (p *Paygate) GetOrderByJobID(ctx context.Context, jobID string) (*model.Order, error) {
	return p.datasource.GetOrderByJobID(ctx, jobID)
}

// ValidateAddress echoes the submitted fields back with is_valid set.
// Address screening happens downstream; this endpoint exists so callers
// can keep a uniform intake flow.
func (p *Paygate) ValidateAddress(ctx context.Context, fields map[string]interface{}) map[string]interface{} {
	_, span := tracer.Start(ctx, "Validating Address")
	defer span.End()

	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["is_valid"] = true
	return out
}

// checksumLeg normalizes the addresses of a settlement-chain tx leg.
func checksumLeg(leg *model.Tx) error {
	if leg.FromAddress != nil {
		checksummed, err := web3.ToChecksumAddress(*leg.FromAddress)
		if err != nil {
			return err
		}
		leg.FromAddress = &checksummed
	}
	if leg.ToAddress != nil {
		checksummed, err := web3.ToChecksumAddress(*leg.ToAddress)
		if err != nil {
			return err
		}
		leg.ToAddress = &checksummed
	}
	return nil
}
