// Command pessimisticproof is the host-side harness around the guest
// proof logic in package pessimisticproof: it reads a canonically
// encoded batch (leaf mode) or batch set (full mode) from a file,
// drives the corresponding proof algorithm, and writes the commit
// channel bytes an on-chain verifier would check.
//
// It plays the role the Rust original splits between program/src/main.rs
// (the zkVM guest, which reads its input via sp1_zkvm::io::read and
// commits via sp1_zkvm::io::commit) and script/src/main.rs (the host
// driver that supplies that input and checks the resulting root); here
// both sides collapse into one process since no zkVM is involved.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/agglayer/pessimistic-proof-go/hostio"
	"github.com/agglayer/pessimistic-proof-go/log"
	"github.com/agglayer/pessimistic-proof-go/pessimisticproof"
	"github.com/agglayer/pessimistic-proof-go/state"
	"github.com/agglayer/pessimistic-proof-go/types"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error("pessimisticproof: fatal", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := newCustomFlagSet("pessimisticproof")
	mode := fs.String("mode", "leaf", "proof mode: leaf or full")
	in := fs.String("in", "", "path to the canonically encoded batch (leaf) or batch set (full)")
	out := fs.String("out", "", "path to write the commit-channel bytes (default: stdout)")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	metricsAddr := fs.String("metrics-addr", "", "if set, serve Prometheus metrics on this address while the proof runs")
	var metricsReportIntervalMs uint64
	fs.Uint64Var(&metricsReportIntervalMs, "metrics-report-interval-ms", 0,
		"if nonzero, push a metrics snapshot to the log every interval during the run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("pessimisticproof: -in is required")
	}
	log.SetDefault(log.New(log.SlogLevel(log.LevelFromString(*logLevel))))

	stopMetricsServer := serveMetrics(*metricsAddr)
	defer stopMetricsServer()
	if metricsReportIntervalMs > 0 {
		stopReporting := startMetricsReporting(time.Duration(metricsReportIntervalMs) * time.Millisecond)
		defer stopReporting()
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("pessimisticproof: reading input: %w", err)
	}

	var commit []byte
	switch *mode {
	case "leaf":
		commit, err = runLeaf(data)
	case "full":
		commit, err = runFull(data)
	default:
		return fmt.Errorf("pessimisticproof: unknown mode %q, want leaf or full", *mode)
	}
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = os.Stdout.Write(commit)
		return err
	}
	return os.WriteFile(*out, commit, 0o644)
}

func runLeaf(data []byte) ([]byte, error) {
	batch, err := hostio.DecodeBatch(data)
	if err != nil {
		return nil, fmt.Errorf("pessimisticproof: decoding batch: %w", err)
	}

	initialRoot := batch.PrevLocalExitRoot
	newRoot, aggregate, err := pessimisticproof.LeafProof(batch)
	if err != nil {
		return nil, fmt.Errorf("pessimisticproof: leaf proof: %w", err)
	}

	return hostio.CommitLeafProof(initialRoot, newRoot, aggregate), nil
}

func runFull(data []byte) ([]byte, error) {
	batches, err := hostio.DecodeBatches(data)
	if err != nil {
		return nil, fmt.Errorf("pessimisticproof: decoding batches: %w", err)
	}

	exitRoots, balanceRoots, err := pessimisticproof.FullProof(batches)
	if err != nil {
		return nil, fmt.Errorf("pessimisticproof: full proof: %w", err)
	}

	checkpoint := make(map[types.NetworkId]state.Checkpoint, len(exitRoots))
	for network, exitRoot := range exitRoots {
		checkpoint[network] = state.Checkpoint{ExitRoot: exitRoot, BalanceRoot: balanceRoots[network]}
	}
	return hostio.CommitFullProof(checkpoint)
}
