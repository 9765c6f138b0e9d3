// Command zairsetup is the parameter-generation / MPC-ceremony CLI for the
// Sapling and Orchard claim circuits, generalized from the teacher's
// cmd/compile (registry keyed by circuit name, "dev" vs "ceremony"
// subcommands, Phase 1/2 workflow) to the four pool×scheme circuits this
// module proves (circuits/sapling, circuits/orchard; pkg/prover loads the
// keys this command writes).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/consensys/gnark/frontend"

	"github.com/zair-project/nonmembership/circuits/orchard"
	"github.com/zair-project/nonmembership/circuits/sapling"
	"github.com/zair-project/nonmembership/pkg/setup"
)

// circuitEntry pairs a circuit constructor with its proof backend, matching
// the teacher's CircuitEntry.
type circuitEntry struct {
	NewCircuit func() frontend.Circuit
	Backend    setup.Backend
}

// circuitRegistry names every circuit cmd/zairsetup can generate parameters
// for. Sapling uses Groth16 (an MPC ceremony is meaningful); Orchard uses
// PLONK (universal SRS, "dev" setup only) — per pkg/prover's SaplingParams
// vs OrchardParams split.
var circuitRegistry = map[string]circuitEntry{
	"sapling_native": {NewCircuit: func() frontend.Circuit { return &sapling.NativeCircuit{} }, Backend: setup.Groth16Backend},
	"sapling_sha256": {NewCircuit: func() frontend.Circuit { return &sapling.Sha256Circuit{} }, Backend: setup.Groth16Backend},
	"orchard_native": {NewCircuit: func() frontend.Circuit { return &orchard.NativeCircuit{} }, Backend: setup.PlonkBackend},
	"orchard_sha256": {NewCircuit: func() frontend.Circuit { return &orchard.Sha256Circuit{} }, Backend: setup.PlonkBackend},
}

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	circuitName := os.Args[1]
	entry, ok := circuitRegistry[circuitName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown circuit: %s\n", circuitName)
		fmt.Fprintf(os.Stderr, "Available circuits: ")
		for name := range circuitRegistry {
			fmt.Fprintf(os.Stderr, "%s ", name)
		}
		fmt.Fprintln(os.Stderr)
		os.Exit(1)
	}

	switch os.Args[2] {
	case "dev":
		switch entry.Backend {
		case setup.Groth16Backend:
			if err := setup.DevSetup(entry.NewCircuit(), ".", circuitName); err != nil {
				log.Fatal(err)
			}
		case setup.PlonkBackend:
			if err := setup.PlonkDevSetup(entry.NewCircuit(), ".", circuitName); err != nil {
				log.Fatal(err)
			}
		}
	case "ceremony":
		if entry.Backend != setup.Groth16Backend {
			log.Fatalf("MPC ceremony is only supported for Groth16 circuits. %q uses PLONK (universal SRS).", circuitName)
		}
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		handleCeremony(circuitName, entry.NewCircuit)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleCeremony(circuitName string, newCircuit func() frontend.Circuit) {
	switch os.Args[3] {
	case "p1-init":
		if err := setup.CeremonyP1Init(newCircuit()); err != nil {
			log.Fatal(err)
		}
	case "p1-contribute":
		if err := setup.CeremonyP1Contribute(); err != nil {
			log.Fatal(err)
		}
	case "p1-verify":
		if len(os.Args) < 5 {
			log.Fatalf("usage: go run ./cmd/zairsetup %s ceremony p1-verify BEACON_HEX", circuitName)
		}
		if err := setup.CeremonyP1Verify(newCircuit(), os.Args[4]); err != nil {
			log.Fatal(err)
		}
	case "p2-init":
		if err := setup.CeremonyP2Init(newCircuit()); err != nil {
			log.Fatal(err)
		}
	case "p2-contribute":
		if err := setup.CeremonyP2Contribute(); err != nil {
			log.Fatal(err)
		}
	case "p2-verify":
		if len(os.Args) < 5 {
			log.Fatalf("usage: go run ./cmd/zairsetup %s ceremony p2-verify BEACON_HEX", circuitName)
		}
		if err := setup.CeremonyP2Verify(newCircuit(), os.Args[4], ".", circuitName); err != nil {
			log.Fatal(err)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage:
  go run ./cmd/zairsetup <circuit> dev                         Dev mode (single-party/unsafe setup, NOT for production)

  go run ./cmd/zairsetup <circuit> ceremony p1-init            Initialize Phase 1 (Powers of Tau)
  go run ./cmd/zairsetup <circuit> ceremony p1-contribute      Add a Phase 1 contribution
  go run ./cmd/zairsetup <circuit> ceremony p1-verify HEX      Verify Phase 1 & seal with random beacon

  go run ./cmd/zairsetup <circuit> ceremony p2-init            Initialize Phase 2 (circuit-specific)
  go run ./cmd/zairsetup <circuit> ceremony p2-contribute      Add a Phase 2 contribution
  go run ./cmd/zairsetup <circuit> ceremony p2-verify HEX      Verify Phase 2, seal & export keys

Available circuits: sapling_native, sapling_sha256 (Groth16); orchard_native, orchard_sha256 (PLONK)

Note: MPC ceremony is only available for Groth16 circuits (sapling_*).
      PLONK circuits (orchard_*) use a universal SRS and only need "dev" setup.

Ceremony workflow (Groth16 only):
  1. p1-init          Coordinator creates the initial Phase 1 state
  2. p1-contribute    Each participant contributes (repeat N times)
  3. p1-verify        Coordinator verifies all & seals with a public beacon
  4. p2-init          Coordinator initializes Phase 2 with the circuit
  5. p2-contribute    Each participant contributes (repeat M times)
  6. p2-verify        Coordinator verifies all, seals, and exports final keys

Security: 1-of-N honest — if any single contributor is honest, the setup is secure.
Beacon: use a public randomness source (e.g. League of Entropy) evaluated AFTER the last contribution.`)
}
