package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/btcsuite/btcd/blockchain"

	"github.com/sheepman0/skeincoin"
	"github.com/sheepman0/skeincoin/coredb"
	"github.com/sheepman0/skeincoin/db"
	"github.com/sheepman0/skeincoin/rlimit"
)

func main() {

	connStr := flag.String("connstr", "host=/var/run/postgresql dbname=skeincoin sslmode=disable", "Db connection string")
	blocksPath := flag.String("blocks", "", "/path/to/blocks")
	chainStatePath := flag.String("chainstate", "", "/path/to/chainstate (levelDb coin set)")
	startFile := flag.Int("start-file", 0, "Block file number to start at")
	startHeight := flag.Int("start-height", 0, "Height of the first block in the bundle")
	testNet := flag.Bool("testnet", false, "Use testnet parameters")
	cacheSize := flag.Int("cache-size", 10_000_000, "Tx hashes to cache for prevout_tx_id")
	noPg := flag.Bool("no-pg", false, "Skip the Postgres archive, only maintain the coin set")

	flag.Parse()

	if *blocksPath == "" {
		log.Fatalf("-blocks required.")
	}
	if *chainStatePath == "" {
		log.Fatalf("-chainstate required.")
	}

	params := &skeincoin.MainNetParams
	if *testNet {
		params = &skeincoin.TestNetParams
	}

	if err := rlimit.SetRLimit(1024); err != nil { // LevelDb opens many files!
		log.Fatalf("Error setting rlimit: %v", err)
	}

	coins, err := coredb.Open(*chainStatePath)
	if err != nil {
		log.Fatalf("Error opening chainstate: %v", err)
	}
	defer coins.Close()

	var writer *db.PGWriter
	if !*noPg {
		if writer, err = db.NewPGWriter(*connStr, *cacheSize); err != nil {
			log.Fatalf("Error creating writer: %v", err)
		}
	}

	// monitor ctrl-c
	interrupt := make(chan bool, 1)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Printf("Interrupt, exiting scan loop...")
		signal.Stop(sigCh)
		interrupt <- true
	}()

	if err := processBlocks(params, *blocksPath, *startFile, *startHeight, coins, writer, interrupt); err != nil {
		log.Fatalf("Error: %v", err)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			log.Fatalf("Error flushing writer: %v", err)
		}
		height, err := writer.LastHeight()
		if err == nil {
			log.Printf("Archived up to height %d.", height)
		}
	}
	log.Printf("All done.")
}

func processBlocks(params *skeincoin.Params, blocksPath string, startFile, startHeight int,
	coins *coredb.CoinsDB, writer *db.PGWriter, interrupt chan bool) error {

	store, err := skeincoin.NewBlockStore(blocksPath, startFile)
	if err != nil {
		return err
	}

	timeSource := blockchain.NewMedianTime()

	out := make(chan *skeincoin.BlockRec, 64)
	in := skeincoin.NewBlockStream(out, 10)

	done := make(chan error, 1)
	go func() {
		done <- connectAndArchive(params, coins, writer, timeSource, out)
	}()

	count := 0
	for len(interrupt) == 0 {
		b := skeincoin.Block{Magic: params.Magic}
		if err := skeincoin.BinRead(&b, store); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			close(in)
			<-done
			return err
		}
		br := &skeincoin.BlockRec{
			Block:  &b,
			Hash:   b.BlockHeader.Hash(),
			Height: startHeight,
		}
		in <- br
		count++
		if count%10000 == 0 {
			log.Printf("Read %d blocks...", count)
		}
	}
	close(in)

	return <-done
}

func connectAndArchive(params *skeincoin.Params, coins *coredb.CoinsDB, writer *db.PGWriter,
	timeSource blockchain.MedianTimeSource, out <-chan *skeincoin.BlockRec) error {

	var firstErr error
	for br := range out {
		// keep draining after a failure so the producer never blocks
		if firstErr != nil || br.Orphan {
			if br.Orphan {
				log.Printf("Skipping orphan block %v", br.Hash)
			}
			continue
		}

		var state skeincoin.ValidationState
		if err := br.Block.CheckBlock(br.Height, params, timeSource.AdjustedTime(), &state); err != nil {
			log.Printf("Rejecting block %v at height %d (penalty %d): %s",
				br.Hash, br.Height, state.DoSScore, state.RejectReason)
			continue
		}

		if err := coins.ConnectBlock(br.Block, br.Height); err != nil {
			firstErr = err
			continue
		}

		if writer != nil {
			if err := writer.WriteBlock(br); err != nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
