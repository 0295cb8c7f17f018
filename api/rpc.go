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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	model2 "github.com/paygate-io/paygate/api/model"
	"github.com/paygate-io/paygate/config"
	"github.com/paygate-io/paygate/internal/apierror"
)

const (
	rpcParseError     = -32700
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcInternalError  = -32603
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var rpcUpgrader = websocket.Upgrader{
	// The peer connects server-to-server, not from a browser.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeRPC exposes the intake operations as JSON-RPC over a persistent
// websocket for the processing peer. Each request is answered on the same
// connection; failures are logged and surfaced on the RPC error channel
// instead of tearing the connection down.
func (a Api) ServeRPC(c *gin.Context) {
	conn, err := rpcUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Warnf("rpc connection dropped: %v", err)
			}
			return
		}

		var req rpcRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			a.writeRPC(conn, rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: rpcParseError, Message: "parse error"}})
			continue
		}

		result, rpcErr := a.dispatch(c, &req)
		resp := rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
		a.writeRPC(conn, resp)
	}
}

func (a Api) writeRPC(conn *websocket.Conn, resp rpcResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		logrus.Errorf("failed to write rpc response: %v", err)
	}
}

// dispatch routes one request to the matching intake operation. Every error
// is logged before being handed to the transport, so the server log alone
// tells the story of a failed intake.
func (a Api) dispatch(c *gin.Context, req *rpcRequest) (interface{}, *rpcError) {
	ctx := c.Request.Context()

	switch req.Method {
	case "get_deposit_address":
		var p model2.GetDepositAddress
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, &rpcError{Code: rpcInvalidParams, Message: "invalid params"}
		}
		if err := p.ValidateGetDepositAddress(); err != nil {
			return nil, logRPCError(req.Method, rpcInvalidParams, err)
		}
		address, err := a.paygate.GetDepositAddress(ctx, p.User)
		if err != nil {
			return nil, logRPCError(req.Method, rpcInternalError, err)
		}
		return model2.DepositAddressResponse{User: p.User, DepositAddress: address}, nil

	case "new_in_order":
		var p model2.CreateOrder
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, &rpcError{Code: rpcInvalidParams, Message: "invalid params"}
		}
		if err := p.ValidateInOrder(); err != nil {
			return nil, logRPCError(req.Method, rpcInvalidParams, err)
		}
		if _, err := a.paygate.NewInOrder(ctx, p.ToOrder()); err != nil {
			return nil, logRPCError(req.Method, rpcInternalError, err)
		}
		return gin.H{}, nil

	case "new_out_order":
		var p model2.CreateOrder
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, &rpcError{Code: rpcInvalidParams, Message: "invalid params"}
		}
		if err := p.ValidateOutOrder(); err != nil {
			return nil, logRPCError(req.Method, rpcInvalidParams, err)
		}
		if _, err := a.paygate.NewOutOrder(ctx, p.ToOrder()); err != nil {
			return nil, logRPCError(req.Method, rpcInternalError, err)
		}
		conf, err := config.Fetch()
		if err != nil {
			return nil, logRPCError(req.Method, rpcInternalError, err)
		}
		return model2.OutOrderResponse{
			Coin:             conf.Ethereum.SettlementCoin,
			Amount:           decimal.Zero,
			FromAddress:      a.paygate.HotAddress(),
			MaxConfirmations: conf.Ethereum.RequiredConfirmations,
		}, nil

	case "validate_address":
		var fields map[string]interface{}
		if err := json.Unmarshal(req.Params, &fields); err != nil {
			return nil, &rpcError{Code: rpcInvalidParams, Message: "invalid params"}
		}
		return a.paygate.ValidateAddress(ctx, fields), nil

	default:
		return nil, &rpcError{Code: rpcMethodNotFound, Message: "method not found"}
	}
}

func logRPCError(method string, code int, err error) *rpcError {
	logrus.Errorf("rpc %s failed: %v", method, err)
	var apiErr apierror.APIError
	if errors.As(err, &apiErr) {
		return &rpcError{Code: code, Message: apiErr.Error()}
	}
	return &rpcError{Code: code, Message: err.Error()}
}
