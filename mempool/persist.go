// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package mempool

import (
	"bufio"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
)

// Disk persistence is best effort and runs only during startup and shutdown
// windows. I/O failures are logged and swallowed; the in-memory pool stays
// authoritative.

// maxLineBytes bounds a single serialized bundle line when reloading.
const maxLineBytes = 4 * 1024 * 1024

// SaveToDisk writes every indexed bundle to the save file, one line per
// bundle, ordered by target block ascending. The output is deterministic for
// the same pool contents.
func (pool *BundlePool) SaveToDisk() {
	log.Info("Saving bundles", "file", pool.saveFilePath)

	file, err := os.Create(pool.saveFilePath)
	if err != nil {
		log.Error("Error while saving bundles", "file", pool.saveFilePath, "err", err)
		return
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	var saved int
	for _, bundle := range pool.blockIndex.all() {
		line, err := bundle.SerializeForDisk()
		if err != nil {
			log.Warn("Skipping unserializable bundle",
				"bundle", bundle.bundleIdentifier.Hex(), "err", err)
			continue
		}
		if _, err := writer.WriteString(line + "\n"); err != nil {
			log.Error("Error while saving bundles", "file", pool.saveFilePath, "err", err)
			return
		}
		saved++
	}
	if err := writer.Flush(); err != nil {
		log.Error("Error while saving bundles", "file", pool.saveFilePath, "err", err)
		return
	}
	log.Info("Saved bundles", "count", saved, "file", pool.saveFilePath)
}

// LoadFromDisk restores bundles from the save file and returns the number of
// bundles inserted. Lines are independent, so they are decoded concurrently;
// a malformed line is logged and skipped without aborting the rest of the
// load. The save file is deleted once the pass completes, whether or not
// some lines were skipped, so a crash-and-retry cycle never replays stale
// data.
func (pool *BundlePool) LoadFromDisk() int {
	file, err := os.Open(pool.saveFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error("Error while reading bundles", "file", pool.saveFilePath, "err", err)
		}
		return 0
	}
	log.Info("Loading bundles", "file", pool.saveFilePath)

	var loaded atomic.Int64
	lines := make(chan string, runtime.NumCPU())
	var wg sync.WaitGroup
	for i := 0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := range lines {
				bundle, err := RestoreFromSerialized(line)
				if err != nil {
					log.Warn("Error while loading bundle from serialized format",
						"line", line, "err", err)
					continue
				}
				pool.PutOrReplace(bundle.bundleIdentifier, bundle)
				loaded.Add(1)
			}
		}()
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	close(lines)
	wg.Wait()

	if err := scanner.Err(); err != nil {
		log.Error("Error while reading bundles, partially loaded",
			"file", pool.saveFilePath, "loaded", loaded.Load(), "err", err)
	} else {
		log.Info("Loaded bundles", "count", loaded.Load(), "file", pool.saveFilePath)
	}
	file.Close()

	if err := os.Remove(pool.saveFilePath); err != nil {
		log.Warn("Cannot delete bundle save file", "file", pool.saveFilePath, "err", err)
	}
	return int(loaded.Load())
}
