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
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// defaultCallTimeout bounds a call whose context carries no deadline. A
// silent peer would otherwise hold the connection lock forever and stall
// every later caller.
const defaultCallTimeout = 30 * time.Second

// Booker is a JSON-RPC-over-websocket client for the exchange booker.
// The connection is dialed on first use and held open; a failed call
// drops it so the next call redials.
type Booker struct {
	url         string
	callTimeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
}

// NewBooker builds a booker client for the given websocket URL. The
// connection is not opened until the first call; use Connect to dial
// eagerly at startup.
func NewBooker(url string) *Booker {
	return &Booker{url: url, callTimeout: defaultCallTimeout}
}

// Connect dials the booker immediately instead of waiting for the first
// call.
func (b *Booker) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ensureConn(ctx)
}

func (b *Booker) ensureConn(ctx context.Context) error {
	if b.conn != nil {
		return nil
	}
	if b.url == "" {
		return errors.New("booker url is not configured")
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return errors.Wrapf(err, "dialing booker at %s", b.url)
	}
	b.conn = conn
	logrus.Info("Connection to booker has been established successfully.")
	return nil
}

// Call invokes a booker method and unmarshals its result into result,
// which may be nil when the caller does not care about the payload.
// Calls are serialized on the single connection.
func (b *Booker) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureConn(ctx); err != nil {
		return err
	}

	b.nextID++
	req := rpcRequest{JSONRPC: "2.0", ID: b.nextID, Method: method, Params: params}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(b.callTimeout)
	}
	_ = b.conn.SetWriteDeadline(deadline)
	_ = b.conn.SetReadDeadline(deadline)
	if err := b.conn.WriteJSON(req); err != nil {
		b.dropConn()
		return errors.Wrapf(err, "sending %s to booker", method)
	}

	// Responses arrive in request order on this connection, but skip any
	// stray frames with stale ids from abandoned calls.
	for {
		var resp rpcResponse
		if err := b.conn.ReadJSON(&resp); err != nil {
			b.dropConn()
			return errors.Wrapf(err, "reading %s response from booker", method)
		}
		if resp.ID != req.ID {
			continue
		}
		if resp.Error != nil {
			return resp.Error
		}
		if result == nil {
			return nil
		}
		return errors.Wrapf(json.Unmarshal(resp.Result, result), "decoding %s result", method)
	}
}

// Close shuts the connection down; a later call redials.
func (b *Booker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}

func (b *Booker) dropConn() {
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
}
