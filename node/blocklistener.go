// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package node

import (
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const newHeadsSubscribeRequest = `{"id":1,"jsonrpc":"2.0","method":"eth_subscribe","params":["newHeads"]}`

// BlockAddedHandler is invoked once per newly appended block with its height.
// Heights arrive in roughly ascending order but neither strict monotonicity
// nor uniqueness is guaranteed.
type BlockAddedHandler func(height uint64)

// BlockListener subscribes to an execution node's new-head notifications over
// websocket and forwards each head's block number to the registered handler.
// The handler is registered at construction time and never changes.
type BlockListener struct {
	endpoint string
	handler  BlockAddedHandler

	conn *websocket.Conn
	quit chan struct{}
	wg   sync.WaitGroup
}

func NewBlockListener(endpoint string, handler BlockAddedHandler) *BlockListener {
	return &BlockListener{
		endpoint: endpoint,
		handler:  handler,
		quit:     make(chan struct{}),
	}
}

// Start dials the node, subscribes to newHeads and spawns the read loop.
func (l *BlockListener) Start() error {
	conn, _, err := websocket.DefaultDialer.Dial(l.endpoint, nil)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage,
		[]byte(newHeadsSubscribeRequest)); err != nil {
		conn.Close()
		return err
	}
	l.conn = conn

	l.wg.Add(1)
	go l.readLoop()

	log.Info("Subscribed to new heads", "endpoint", l.endpoint)
	return nil
}

// Stop tears the subscription down and waits for the read loop to exit.
func (l *BlockListener) Stop() {
	close(l.quit)
	if l.conn != nil {
		l.conn.Close()
	}
	l.wg.Wait()
}

func (l *BlockListener) readLoop() {
	defer l.wg.Done()
	for {
		_, payload, err := l.conn.ReadMessage()
		if err != nil {
			select {
			case <-l.quit:
			default:
				log.Error("New head subscription lost", "endpoint", l.endpoint, "err", err)
			}
			return
		}
		height, ok := headBlockNumber(payload)
		if !ok {
			// Subscription confirmations and other replies land here too.
			log.Trace("Ignoring non-head notification", "payload", string(payload))
			continue
		}
		l.handler(height)
	}
}

// headBlockNumber extracts the block number from a newHeads subscription
// notification, reporting false for any other payload.
func headBlockNumber(payload []byte) (uint64, bool) {
	number := gjson.GetBytes(payload, "params.result.number")
	if !number.Exists() {
		return 0, false
	}
	height, err := hexutil.DecodeUint64(number.String())
	if err != nil {
		log.Warn("Malformed head block number", "number", number.String(), "err", err)
		return 0, false
	}
	return height, true
}
