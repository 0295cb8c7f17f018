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

// Package web3 holds the settlement-chain collaborators of the gateway:
// EIP-55 address normalization and the HD derivation of per-wallet cold
// deposit addresses. All key material stays inside this package.
package web3

import (
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"

	"github.com/paygate-io/paygate/config"
)

// ToChecksumAddress returns the EIP-55 checksum form of an Ethereum address
// regardless of the casing it was submitted with.
func ToChecksumAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", errors.Errorf("not a valid ethereum address: %q", address)
	}
	return common.HexToAddress(address).Hex(), nil
}

// Deriver mints cold deposit addresses from the gateway's wallet mnemonic.
// Addresses follow the BIP-44 ethereum path m/44'/60'/0'/0/<index>, so the
// same wallet id always yields the same address.
type Deriver struct {
	changeKey  *hdkeychain.ExtendedKey
	hotAddress string
}

func NewDeriver(cnf config.EthereumConfig) (*Deriver, error) {
	if !bip39.IsMnemonicValid(cnf.Mnemonic) {
		return nil, errors.New("ethereum mnemonic is not a valid bip39 phrase")
	}
	if !common.IsHexAddress(cnf.HotAddress) {
		return nil, errors.Errorf("hot address is not a valid ethereum address: %q", cnf.HotAddress)
	}

	seed := bip39.NewSeed(cnf.Mnemonic, "")
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, errors.Wrap(err, "deriving master key")
	}

	// m/44'/60'/0'/0
	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 60,
		hdkeychain.HardenedKeyStart + 0,
		0,
	}
	key := master
	for _, index := range path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, errors.Wrapf(err, "deriving child key %d", index)
		}
	}

	return &Deriver{
		changeKey:  key,
		hotAddress: common.HexToAddress(cnf.HotAddress).Hex(),
	}, nil
}

// ColdAddress derives the checksummed deposit address for one wallet index.
func (d *Deriver) ColdAddress(index uint32) (string, error) {
	child, err := d.changeKey.Derive(index)
	if err != nil {
		return "", errors.Wrapf(err, "deriving address %d", index)
	}
	pub, err := child.ECPubKey()
	if err != nil {
		return "", errors.Wrapf(err, "extracting public key %d", index)
	}
	return crypto.PubkeyToAddress(*pub.ToECDSA()).Hex(), nil
}

// HotAddress returns the checksummed payout address the gateway spends from.
func (d *Deriver) HotAddress() string {
	return d.hotAddress
}
