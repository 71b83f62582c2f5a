package main

import (
	"fmt"
	"log"
	"os"

	"github.com/privateinv/inventory-zkproof/circuits/capacity"
	"github.com/privateinv/inventory-zkproof/circuits/itemexists"
	"github.com/privateinv/inventory-zkproof/circuits/keyauth"
	"github.com/privateinv/inventory-zkproof/circuits/statetransition"
)

var exporters = map[string]func(keysDir string) ([]byte, error){
	"statetransition": statetransition.ExportProofFixture,
	"itemexists":      itemexists.ExportProofFixture,
	"capacity":        capacity.ExportProofFixture,
	"keyauth":         keyauth.ExportProofFixture,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/export <circuit>")
		fmt.Println()
		fmt.Println("Available circuits: statetransition, itemexists, capacity, keyauth")
		fmt.Println()
		fmt.Println("Keys must exist in the current directory (run `go run ./cmd/compile <circuit> dev` first).")
		os.Exit(1)
	}

	circuit := os.Args[1]
	export, ok := exporters[circuit]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown circuit: %s\n", circuit)
		fmt.Fprintln(os.Stderr, "Available circuits: statetransition, itemexists, capacity, keyauth")
		os.Exit(1)
	}

	jsonOut, err := export(".")
	if err != nil {
		log.Fatalf("export proof fixture: %v", err)
	}
	outPath := circuit + "_proof_fixture.json"
	if err := os.WriteFile(outPath, jsonOut, 0644); err != nil {
		log.Fatalf("write fixture file: %v", err)
	}
	fmt.Printf("\nFixture written to %s\n", outPath)
}
