// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package node

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadBlockNumber(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		height  uint64
		ok      bool
	}{
		{
			"new head notification",
			`{"jsonrpc":"2.0","method":"eth_subscription","params":{"subscription":"0xcd0c3e8af590364c09d0fa6a1210faf5","result":{"number":"0x64","hash":"0x9b0ea0"}}}`,
			100, true,
		},
		{
			"subscription confirmation",
			`{"id":1,"jsonrpc":"2.0","result":"0xcd0c3e8af590364c09d0fa6a1210faf5"}`,
			0, false,
		},
		{
			"malformed number",
			`{"params":{"result":{"number":"nothex"}}}`,
			0, false,
		},
		{
			"empty payload",
			`{}`,
			0, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			height, ok := headBlockNumber([]byte(tt.payload))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.height, height)
		})
	}
}

func TestBlockListenerDeliversHeads(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			require.NoError(t, err)
			defer conn.Close()

			// expect the newHeads subscription request first
			_, request, err := conn.ReadMessage()
			require.NoError(t, err)
			assert.Contains(t, string(request), "newHeads")

			messages := []string{
				`{"id":1,"jsonrpc":"2.0","result":"0xcd0c3e8af590364c09d0fa6a1210faf5"}`,
				`{"jsonrpc":"2.0","method":"eth_subscription","params":{"subscription":"0xcd0c3e8af590364c09d0fa6a1210faf5","result":{"number":"0x64"}}}`,
				`{"jsonrpc":"2.0","method":"eth_subscription","params":{"subscription":"0xcd0c3e8af590364c09d0fa6a1210faf5","result":{"number":"0x96"}}}`,
			}
			for _, msg := range messages {
				require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
			}
			// hold the connection open until the client goes away
			conn.ReadMessage()
		}))
	defer server.Close()

	heights := make(chan uint64, 2)
	listener := NewBlockListener(
		"ws"+strings.TrimPrefix(server.URL, "http"),
		func(height uint64) { heights <- height })
	require.NoError(t, listener.Start())
	defer listener.Stop()

	for _, expected := range []uint64{100, 150} {
		select {
		case height := <-heights:
			assert.Equal(t, expected, height)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for head notification")
		}
	}
}

func TestBlockListenerStartFailsWithoutNode(t *testing.T) {
	listener := NewBlockListener("ws://127.0.0.1:1", func(uint64) {})
	assert.Error(t, listener.Start())
}
