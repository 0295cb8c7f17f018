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
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// FlowIn marks a deposit order settling from the source chain into the
	// gateway's custody.
	FlowIn = "IN"
	// FlowOut marks a payout order leaving the gateway's custody.
	FlowOut = "OUT"
)

// Tx records one leg of a transfer. A Tx is owned exclusively by its parent
// Order and is immutable once created; only the settlement worker advances
// the confirmation counters and the error column afterwards.
type Tx struct {
	ID               int64           `json:"id"`
	Coin             string          `json:"coin"`
	TxID             *string         `json:"tx_id"`
	FromAddress      *string         `json:"from_address"`
	ToAddress        *string         `json:"to_address"`
	Amount           decimal.Decimal `json:"amount"`
	TxCreatedAt      time.Time       `json:"created_at"`
	Error            *string         `json:"error"`
	Confirmations    int64           `json:"confirmations"`
	MaxConfirmations int64           `json:"max_confirmations"`
}

// Order is the unit of work for one settlement flow. The ID is supplied by
// the caller and acts as the idempotency anchor: re-submitting the same id
// must never create a second order or a second settlement job. JobID keys
// the durable queue entry that triggers background settlement.
type Order struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Flow      string    `json:"flow"`
	JobID     string    `json:"job_id"`
	WalletID  *int64    `json:"wallet_id,omitempty"`
	InTx      Tx        `json:"in_tx"`
	OutTx     Tx        `json:"out_tx"`
	CreatedAt time.Time `json:"created_at"`
}

func (order *Order) ToJSON() ([]byte, error) {
	return json.Marshal(order)
}

// GenerateUUIDWithSuffix creates a prefixed UUID for queue-visible
// identifiers, e.g. job_0b6cdb4e-....
func GenerateUUIDWithSuffix(module string) string {
	return fmt.Sprintf("%s_%s", module, uuid.New().String())
}
