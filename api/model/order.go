package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paygate-io/paygate/model"
)

// GetDepositAddress asks for the caller's stable deposit address.
type GetDepositAddress struct {
	User string `json:"user"`
}

// DepositAddressResponse echoes the user together with the minted address.
type DepositAddressResponse struct {
	User           string `json:"user"`
	DepositAddress string `json:"deposit_address"`
}

// TxLeg is one transfer leg as submitted by the order-intake caller.
type TxLeg struct {
	Coin             string          `json:"coin"`
	TxID             *string         `json:"tx_id"`
	FromAddress      *string         `json:"from_address"`
	ToAddress        *string         `json:"to_address"`
	Amount           decimal.Decimal `json:"amount"`
	CreatedAt        time.Time       `json:"created_at"`
	Error            *string         `json:"error"`
	Confirmations    int64           `json:"confirmations"`
	MaxConfirmations int64           `json:"max_confirmations"`
}

// CreateOrder is the request body shared by inbound and outbound intake.
// The order id comes from the caller and anchors idempotency.
type CreateOrder struct {
	OrderID   string `json:"order_id"`
	OrderType string `json:"order_type"`
	InTx      TxLeg  `json:"in_tx"`
	OutTx     TxLeg  `json:"out_tx"`
}

// OutOrderResponse describes where the caller should expect the payout
// from. It reflects gateway configuration, never the submitted legs.
type OutOrderResponse struct {
	Coin             string          `json:"coin"`
	Amount           decimal.Decimal `json:"amount"`
	FromAddress      string          `json:"from_address"`
	MaxConfirmations int64           `json:"max_confirmations"`
}

func (leg *TxLeg) toTx() model.Tx {
	return model.Tx{
		Coin:             leg.Coin,
		TxID:             leg.TxID,
		FromAddress:      leg.FromAddress,
		ToAddress:        leg.ToAddress,
		Amount:           leg.Amount,
		TxCreatedAt:      leg.CreatedAt,
		Error:            leg.Error,
		Confirmations:    leg.Confirmations,
		MaxConfirmations: leg.MaxConfirmations,
	}
}

// ToOrder converts the request into the service order. Flow is assigned by
// the service depending on which intake operation received the request.
func (o *CreateOrder) ToOrder() *model.Order {
	return &model.Order{
		ID:    o.OrderID,
		Type:  o.OrderType,
		InTx:  o.InTx.toTx(),
		OutTx: o.OutTx.toTx(),
	}
}
