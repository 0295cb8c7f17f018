package model

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func validOrderBody() CreateOrder {
	from := "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	to := "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	return CreateOrder{
		OrderID:   gofakeit.UUID(),
		OrderType: "TRANSFER",
		InTx:      TxLeg{Coin: "USDT", FromAddress: &from, ToAddress: &to},
		OutTx:     TxLeg{Coin: "FINTEH.USDT", ToAddress: &to},
	}
}

func TestValidateInOrder(t *testing.T) {
	body := validOrderBody()
	assert.NoError(t, body.ValidateInOrder())

	missingID := validOrderBody()
	missingID.OrderID = ""
	assert.Error(t, missingID.ValidateInOrder())

	missingTo := validOrderBody()
	missingTo.InTx.ToAddress = nil
	assert.Error(t, missingTo.ValidateInOrder())
}

func TestValidateOutOrder(t *testing.T) {
	body := validOrderBody()
	assert.NoError(t, body.ValidateOutOrder())

	// Outbound from-address stays optional, it gets assigned at dispatch.
	body.OutTx.FromAddress = nil
	assert.NoError(t, body.ValidateOutOrder())

	missingTo := validOrderBody()
	missingTo.OutTx.ToAddress = nil
	assert.Error(t, missingTo.ValidateOutOrder())
}

func TestToOrderCarriesBothLegs(t *testing.T) {
	body := validOrderBody()
	order := body.ToOrder()
	assert.Equal(t, body.OrderID, order.ID)
	assert.Equal(t, "TRANSFER", order.Type)
	assert.Equal(t, "USDT", order.InTx.Coin)
	assert.Equal(t, "FINTEH.USDT", order.OutTx.Coin)
	assert.Equal(t, *body.InTx.ToAddress, *order.InTx.ToAddress)
}
