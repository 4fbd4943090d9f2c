// Copyright 2024 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Command stakeminer is the miner front-end flag surface. It is not part of
// the seal core, and it does not start the background sealer: the flags
// below are either reported back (cpu, mining-threads, current-block), run
// a local signing benchmark (benchmark and its timings), or are legacy
// ethash diagnostics (check-pow, create-dag) carried over for operators
// used to them. A
// stake-weighted seal has no DAG and no standalone PoW boundary to check
// a nonce against, so those two print a diagnostic notice and exit
// non-zero rather than silently doing nothing.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/probechain/stakeseal/common"
	"github.com/probechain/stakeseal/consensus/stakeseal"
	"github.com/probechain/stakeseal/crypto"
	"github.com/probechain/stakeseal/crypto/bls"
	"github.com/probechain/stakeseal/params"
)

var (
	flagCPU             bool
	flagMiningThreads   int
	flagCurrentBlock    uint64
	flagNoPrecompute    bool
	flagCreateDAG       uint64
	flagBenchmark       bool
	flagBenchmarkWarmup int
	flagBenchmarkTrial  int
	flagBenchmarkTrials int
	flagCheckPow        []string
)

var rootCmd = &cobra.Command{
	Use:   "stakeminer",
	Short: "Stake-seal background miner",
	Long: `stakeminer exposes the miner flag surface. It does not connect to a node
or start the background sealer: it prints the configured cpu and thread
settings, or with -M runs a local signing benchmark; -w/--check-pow and -D/--create-dag
are legacy ethash diagnostics with no equivalent in a stake-weighted seal
and are refused with an explanatory error.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().BoolVarP(&flagCPU, "cpu", "C", true, "When sealing, use the CPU")
	rootCmd.Flags().IntVarP(&flagMiningThreads, "mining-threads", "t", 0,
		"Number of sealing goroutines to report (values below 1 are reported as 1)")
	rootCmd.Flags().Uint64Var(&flagCurrentBlock, "current-block", 0,
		"Report the current block number at configuration time")
	rootCmd.Flags().BoolVar(&flagNoPrecompute, "no-precompute", false,
		"Retained for CLI compatibility; the stake-seal engine has no epoch DAG to precompute")
	rootCmd.Flags().Uint64VarP(&flagCreateDAG, "create-dag", "D", 0,
		"Legacy ethash diagnostic: create the DAG for the given block and exit")
	rootCmd.Flags().BoolVarP(&flagBenchmark, "benchmark", "M", false,
		"Benchmark sealing and exit; use with --cpu")
	rootCmd.Flags().IntVar(&flagBenchmarkWarmup, "benchmark-warmup", 3,
		"Duration in seconds of the benchmark warmup")
	rootCmd.Flags().IntVar(&flagBenchmarkTrial, "benchmark-trial", 3,
		"Duration in seconds of each benchmark trial")
	rootCmd.Flags().IntVar(&flagBenchmarkTrials, "benchmark-trials", 5,
		"Number of benchmark trials to run")
	rootCmd.Flags().StringSliceVarP(&flagCheckPow, "check-pow", "w", nil,
		"Legacy ethash diagnostic: check PoW credentials <headerHash> <seedHash> <difficulty> <nonce>")
}

func run(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("create-dag") {
		return fmt.Errorf("legacy proof-of-work diagnostic: --create-dag has no equivalent in a stake-weighted seal (no epoch DAG exists)")
	}
	if cmd.Flags().Changed("check-pow") {
		return fmt.Errorf("legacy proof-of-work diagnostic: --check-pow has no equivalent in a stake-weighted seal (no ethash boundary to check a nonce against)")
	}

	if flagCurrentBlock > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "configured for block %d\n", flagCurrentBlock)
	}
	if flagNoPrecompute {
		fmt.Fprintln(cmd.OutOrStdout(), "--no-precompute has no effect: the stake-seal engine precomputes nothing")
	}

	if flagBenchmark {
		return runBenchmark(cmd)
	}

	threads := flagMiningThreads
	if threads <= 0 {
		threads = 1
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stakeminer ready: cpu=%v threads=%d\n", flagCPU, threads)
	return nil
}

// runBenchmark exercises the boundary check in a tight loop for the
// configured warmup and trial durations, reporting checks per second. It
// has no access to a running chain's stake balances, so each iteration
// signs a fixed stake message and tests the result against a fixed
// balance, benchmarking the signature and hashing cost alone rather than
// end-to-end sealing.
func runBenchmark(cmd *cobra.Command) error {
	secret, err := bls.GenerateSecret()
	if err != nil {
		return fmt.Errorf("benchmark: generate key: %w", err)
	}
	dst := []byte(params.MainnetChainParams.BLSDomain)
	stakeMsg := common.BytesToHash([]byte("stakeminer benchmark"))
	balance := uint256.NewInt(1_000_000)
	difficulty := uint256.NewInt(1)

	fmt.Fprintf(cmd.OutOrStdout(), "warming up for %ds\n", flagBenchmarkWarmup)
	warmupDeadline := time.Now().Add(time.Duration(flagBenchmarkWarmup) * time.Second)
	for time.Now().Before(warmupDeadline) {
		if _, err := benchmarkIteration(dst, secret, stakeMsg, difficulty, balance); err != nil {
			return fmt.Errorf("benchmark: %w", err)
		}
	}

	for trial := 1; trial <= flagBenchmarkTrials; trial++ {
		start := time.Now()
		count := 0
		deadline := start.Add(time.Duration(flagBenchmarkTrial) * time.Second)
		for time.Now().Before(deadline) {
			if _, err := benchmarkIteration(dst, secret, stakeMsg, difficulty, balance); err != nil {
				return fmt.Errorf("benchmark: %w", err)
			}
			count++
		}
		elapsed := time.Since(start).Seconds()
		fmt.Fprintf(cmd.OutOrStdout(), "trial %d: %.0f checks/s\n", trial, float64(count)/elapsed)
	}
	return nil
}

// benchmarkIteration signs the stake message, hashes the signature, and
// tests it against the boundary derived from difficulty and balance — the
// same sequence tryKeys runs per candidate key in the background sealer.
func benchmarkIteration(dst []byte, secret bls.Secret, stakeMsg common.Hash, difficulty, balance *uint256.Int) (bool, error) {
	sig, err := bls.Sign(dst, secret, stakeMsg)
	if err != nil {
		return false, err
	}
	boundary := stakeseal.Boundary(difficulty, balance)
	sigHash := common.BytesToHash(crypto.Keccak256(sig[:]))
	return sigHash.LessOrEqual(boundary), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
