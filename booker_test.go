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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookerServer(t *testing.T, handle func(req rpcRequest) rpcResponse) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req rpcRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if err := conn.WriteJSON(handle(req)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestBookerCall(t *testing.T) {
	server := newBookerServer(t, func(req rpcRequest) rpcResponse {
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "in_order_created", req.Method)
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{"ack":true}`)}
	})

	booker := NewBooker(wsURL(server))
	defer booker.Close()

	var result struct {
		Ack bool `json:"ack"`
	}
	err := booker.Call(context.Background(), "in_order_created", map[string]string{"id": "abc123"}, &result)
	require.NoError(t, err)
	assert.True(t, result.Ack)
}

func TestBookerCallReusesConnection(t *testing.T) {
	server := newBookerServer(t, func(req rpcRequest) rpcResponse {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`null`)}
	})

	booker := NewBooker(wsURL(server))
	defer booker.Close()

	require.NoError(t, booker.Connect(context.Background()))
	require.NoError(t, booker.Call(context.Background(), "ping", nil, nil))
	require.NoError(t, booker.Call(context.Background(), "ping", nil, nil))
}

func TestBookerCallSurfacesRPCError(t *testing.T) {
	server := newBookerServer(t, func(req rpcRequest) rpcResponse {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found"}}
	})

	booker := NewBooker(wsURL(server))
	defer booker.Close()

	err := booker.Call(context.Background(), "no_such_method", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
}

func TestBookerRedialsAfterServerRestart(t *testing.T) {
	server := newBookerServer(t, func(req rpcRequest) rpcResponse {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`null`)}
	})

	booker := NewBooker(wsURL(server))
	defer booker.Close()

	require.NoError(t, booker.Call(context.Background(), "ping", nil, nil))

	// Sever the connection behind the client's back. The next call fails
	// and drops the connection, the one after that redials.
	booker.mu.Lock()
	booker.conn.Close()
	booker.mu.Unlock()

	_ = booker.Call(context.Background(), "ping", nil, nil)
	require.NoError(t, booker.Call(context.Background(), "ping", nil, nil))
}

func TestBookerCallTimesOutOnSilentPeer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Swallow requests without ever answering.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	booker := NewBooker(wsURL(server))
	defer booker.Close()
	booker.callTimeout = 100 * time.Millisecond

	err := booker.Call(context.Background(), "ping", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading ping response")
}

func TestBookerRequiresURL(t *testing.T) {
	booker := NewBooker("")
	err := booker.Call(context.Background(), "ping", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
