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
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func (g *GetDepositAddress) ValidateGetDepositAddress() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.User, validation.Required),
	)
}

// ValidateInOrder requires the inbound leg to name the deposit address the
// funds arrived on; without it the order cannot be tied to a wallet.
func (o *CreateOrder) ValidateInOrder() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.OrderID, validation.Required),
		validation.Field(&o.OrderType, validation.Required),
		validation.Field(&o.InTx, validation.By(func(interface{}) error {
			return validation.ValidateStruct(&o.InTx,
				validation.Field(&o.InTx.Coin, validation.Required),
				validation.Field(&o.InTx.ToAddress, validation.NotNil),
			)
		})),
		validation.Field(&o.OutTx, validation.By(func(interface{}) error {
			return validation.ValidateStruct(&o.OutTx,
				validation.Field(&o.OutTx.Coin, validation.Required),
			)
		})),
	)
}

// ValidateOutOrder allows the outbound from-address to stay unset; the
// payout address is assigned when the transfer is dispatched.
func (o *CreateOrder) ValidateOutOrder() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.OrderID, validation.Required),
		validation.Field(&o.OrderType, validation.Required),
		validation.Field(&o.InTx, validation.By(func(interface{}) error {
			return validation.ValidateStruct(&o.InTx,
				validation.Field(&o.InTx.Coin, validation.Required),
			)
		})),
		validation.Field(&o.OutTx, validation.By(func(interface{}) error {
			return validation.ValidateStruct(&o.OutTx,
				validation.Field(&o.OutTx.Coin, validation.Required),
				validation.Field(&o.OutTx.ToAddress, validation.NotNil),
			)
		})),
	)
}
