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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	model2 "github.com/paygate-io/paygate/api/model"
	"github.com/paygate-io/paygate/config"
	"github.com/paygate-io/paygate/internal/apierror"
)

// GetDepositAddress returns the caller's stable deposit address, minting it
// on first use. Success is always 200 with the same payload the RPC form
// returns; failures are attached to the context for the error middleware.
func (a Api) GetDepositAddress(c *gin.Context) {
	var req model2.GetDepositAddress
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apierror.NewAPIError(apierror.ErrBadRequest, "Invalid input", err))
		return
	}
	if err := req.ValidateGetDepositAddress(); err != nil {
		_ = c.Error(apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), err))
		return
	}

	address, err := a.paygate.GetDepositAddress(c.Request.Context(), req.User)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, model2.DepositAddressResponse{User: req.User, DepositAddress: address})
}

// NewInOrder records a deposit order. Re-submitting the same order id is
// safe and returns 200 again without new side effects.
func (a Api) NewInOrder(c *gin.Context) {
	var req model2.CreateOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apierror.NewAPIError(apierror.ErrBadRequest, "Invalid input", err))
		return
	}
	if err := req.ValidateInOrder(); err != nil {
		_ = c.Error(apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), err))
		return
	}

	if _, err := a.paygate.NewInOrder(c.Request.Context(), req.ToOrder()); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// NewOutOrder records a payout order. The response tells the caller where
// the payout will come from and how many confirmations to wait for; it
// reflects gateway configuration, not the submitted legs.
func (a Api) NewOutOrder(c *gin.Context) {
	var req model2.CreateOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apierror.NewAPIError(apierror.ErrBadRequest, "Invalid input", err))
		return
	}
	if err := req.ValidateOutOrder(); err != nil {
		_ = c.Error(apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), err))
		return
	}

	if _, err := a.paygate.NewOutOrder(c.Request.Context(), req.ToOrder()); err != nil {
		_ = c.Error(err)
		return
	}

	conf, err := config.Fetch()
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, model2.OutOrderResponse{
		Coin:             conf.Ethereum.SettlementCoin,
		Amount:           decimal.Zero,
		FromAddress:      a.paygate.HotAddress(),
		MaxConfirmations: conf.Ethereum.RequiredConfirmations,
	})
}

// ValidateAddress echoes the submitted fields back with is_valid set.
func (a Api) ValidateAddress(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		_ = c.Error(apierror.NewAPIError(apierror.ErrBadRequest, "Invalid input", err))
		return
	}

	c.JSON(http.StatusOK, a.paygate.ValidateAddress(c.Request.Context(), fields))
}
