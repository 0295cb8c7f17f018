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
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"

	"github.com/paygate-io/paygate/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var instanceMu sync.Mutex

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and
// initializes it if it's not already. A failed attempt does not latch;
// the next call connects again.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		return instance, nil
	}
	con, err := ConnectDB(configuration.DataSource.Dns)
	if err != nil {
		return nil, err
	}
	instance = &Datasource{Conn: con}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database connection error: %v", err)
		return nil, err
	}
	err = createWalletTables(db)
	if err != nil {
		return nil, err
	}
	err = createOrderTables(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createWalletTables creates the wallet and derived wallet tables. The
// (payment, invoice) unique constraints are what idempotent address
// allocation leans on.
func createWalletTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS wallets (
			id BIGSERIAL PRIMARY KEY,
			payment TEXT NOT NULL,
			invoice TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (payment, invoice)
		);

		CREATE TABLE IF NOT EXISTS derived_wallets (
			id BIGSERIAL PRIMARY KEY,
			wallet_id BIGINT NOT NULL REFERENCES wallets(id),
			payment TEXT NOT NULL,
			invoice TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (payment, invoice)
		);
	`)
	return err
}

// createOrderTables creates the order and tx tables. Orders are keyed by the
// caller-supplied external id, which makes re-submission a no-op.
func createOrderTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS txs (
			id BIGSERIAL PRIMARY KEY,
			coin TEXT NOT NULL,
			tx_id TEXT,
			from_address TEXT,
			to_address TEXT,
			amount NUMERIC NOT NULL DEFAULT 0,
			tx_created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			error TEXT,
			confirmations BIGINT NOT NULL DEFAULT 0,
			max_confirmations BIGINT NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			order_type TEXT NOT NULL,
			flow TEXT NOT NULL CHECK (flow IN ('IN', 'OUT')),
			job_id TEXT NOT NULL UNIQUE,
			wallet_id BIGINT REFERENCES wallets(id),
			in_tx_id BIGINT NOT NULL REFERENCES txs(id),
			out_tx_id BIGINT NOT NULL REFERENCES txs(id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// pqErrorName returns the symbolic postgres error class name, e.g.
// unique_violation or serialization_failure.
func pqErrorName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name()
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqErrorName(err) == "unique_violation"
}

// isRetryableTxError reports whether a serializable transaction aborted in a
// way that a fresh attempt can resolve. Serialization failures are the
// normal outcome of two conflicting concurrent transactions; postgres kills
// one of them and expects the client to retry.
func isRetryableTxError(err error) bool {
	switch pqErrorName(err) {
	case "serialization_failure", "deadlock_detected":
		return true
	}
	return false
}

// newTxBackOff returns the retry policy for aborted serializable
// transactions.
func newTxBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	return bo
}
