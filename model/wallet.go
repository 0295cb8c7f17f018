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

import "time"

// Wallet is the account record for one external user under one payment
// method. Invoice carries the user-facing identifier for that method, for
// example the user's account name on the source chain. A wallet is created
// lazily the first time the user asks for a deposit address and is never
// deleted by this service.
type Wallet struct {
	ID        int64     `json:"id"`
	Payment   string    `json:"payment"`
	Invoice   string    `json:"invoice"`
	CreatedAt time.Time `json:"created_at"`
}

// DerivedWallet is a secondary deposit address minted under a Wallet for a
// different settlement payment method. Invoice holds the derived address
// string, unique per (payment, invoice). A wallet acquires at most one
// derived wallet per settlement method.
type DerivedWallet struct {
	ID        int64     `json:"id"`
	WalletID  int64     `json:"wallet_id"`
	Payment   string    `json:"payment"`
	Invoice   string    `json:"invoice"`
	CreatedAt time.Time `json:"created_at"`
}
