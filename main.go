// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli"

	"github.com/macfarla/linea-sequencer/common/config"
	"github.com/macfarla/linea-sequencer/mempool"
	"github.com/macfarla/linea-sequencer/node"
)

func main() {
	app := cli.NewApp()
	app.Name = "bundlepool"
	app.Usage = "transaction bundle pool for the linea sequencer"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "configuration file",
			Value: "config.yaml",
		},
		cli.StringFlag{
			Name:  "datadir",
			Usage: "directory holding the bundle save file",
		},
		cli.StringFlag{
			Name:  "node",
			Usage: "websocket endpoint of the execution node",
		},
		cli.Uint64Flag{
			Name:  "maxsize",
			Usage: "maximum pool size in bytes",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	conf, err := config.NewSettings().LoadConfigFile(ctx.String("config"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "using default configuration:", err)
	}
	if dataDir := ctx.String("datadir"); dataDir != "" {
		conf.DataDir = dataDir
	}
	if endpoint := ctx.String("node"); endpoint != "" {
		conf.NodeEndpoint = endpoint
	}
	if maxSize := ctx.Uint64("maxsize"); maxSize != 0 {
		conf.BundlePoolMaxSizeBytes = maxSize
	}

	lvl, err := log.LvlFromString(conf.LogLevel)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl,
		log.StreamHandler(os.Stderr, log.TerminalFormat(true))))

	if err := os.MkdirAll(conf.DataDir, 0700); err != nil {
		return err
	}

	pool := mempool.NewBundlePool(conf)
	pool.LoadFromDisk()

	listener := node.NewBlockListener(conf.NodeEndpoint, pool.OnBlockAdded)
	if err := listener.Start(); err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-interrupt
	log.Info("Shutting down bundle pool")

	listener.Stop()
	pool.SaveToDisk()
	return nil
}
