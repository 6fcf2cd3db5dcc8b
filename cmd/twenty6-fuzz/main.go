// Command twenty6-fuzz is a two-goroutine fuzzer for the ring buffer. One
// goroutine randomly reserves and publishes variable-sized records copied
// out of a doubled canonical buffer; the other randomly peeks, reads, and
// consumes, comparing every returned range against the same canonical
// buffer at its own read position. Any mismatch cancels both goroutines.
//
// It drives the ring through its public operations only, the same way any
// other client program would.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cvonelm/twenty6"
)

type readOp int

const (
	opRead readOp = iota
	opPeek
	opConsume
)

type writeOp int

const (
	opPublish writeOp = iota
	opReserve
)

func main() {
	pages := flag.Uint64("pages", 1, "ring size in pages")
	iterations := flag.Int64("iterations", 0, "stop after this many iterations per goroutine (0 = run forever)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ep, err := twenty6.Create(*pages)
	if err != nil {
		log.Error("create ring", "err", err)
		os.Exit(1)
	}
	defer ep.Close()

	capacity := int(ep.Size())

	// Canonical buffer: random content, doubled so a read of up to
	// capacity bytes starting anywhere never has to think about wrap.
	canon := make([]byte, capacity*2)
	if _, err := rand.New(rand.NewSource(time.Now().UnixNano())).Read(canon[:capacity]); err != nil {
		log.Error("seed canonical buffer", "err", err)
		os.Exit(1)
	}
	copy(canon[capacity:], canon[:capacity])

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return writer(ctx, ep, canon, capacity, *iterations) })
	g.Go(func() error { return reader(ctx, ep, canon, capacity, *iterations) })

	if err := g.Wait(); err != nil {
		log.Error("fuzzer detected a mismatch", "err", err)
		os.Exit(1)
	}
	log.Info("fuzzer finished without a mismatch", "iterations", *iterations)
}

func writer(ctx context.Context, ep *twenty6.Endpoint, canon []byte, capacity int, iterations int64) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ 0x5151))
	maxMsg := int(float64(capacity) * 1.2)
	writePos := 0

	for i := int64(0); iterations == 0 || i < iterations; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		switch writeOp(rng.Intn(2)) {
		case opPublish:
			_ = ep.Publish()
		case opReserve:
			size := rng.Intn(maxMsg + 1)
			buf, ok := ep.Reserve(size)
			if !ok {
				continue
			}
			copy(buf, canon[writePos:writePos+size])
			writePos = (writePos + size) % capacity
		}
	}
	return nil
}

func reader(ctx context.Context, ep *twenty6.Endpoint, canon []byte, capacity int, iterations int64) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ 0xC0FFEE))
	maxMsg := int(float64(capacity) * 1.2)
	readPos := 0

	for i := int64(0); iterations == 0 || i < iterations; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		size := rng.Intn(maxMsg + 1)
		switch readOp(rng.Intn(3)) {
		case opRead:
			buf, ok := ep.Read(size)
			if !ok {
				continue
			}
			if !equalRange(buf, canon, readPos) {
				return fmt.Errorf("mismatch during read at %d, size %d", readPos, size)
			}
			readPos = (readPos + size) % capacity
		case opPeek:
			buf, ok := ep.Peek(size)
			if !ok {
				continue
			}
			if !equalRange(buf, canon, readPos) {
				return fmt.Errorf("mismatch during peek at %d, size %d", readPos, size)
			}
		case opConsume:
			_ = ep.Consume()
		}
	}
	return nil
}

func equalRange(got, canon []byte, at int) bool {
	for i, b := range got {
		if b != canon[at+i] {
			return false
		}
	}
	return true
}
