// centaur-admin inspects, installs, and verifies weight packs against
// a badger weight store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/centaurbot/centaur/weights"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  centaur-admin inspect <pack>          - print pack header and blob schedule")
	fmt.Fprintln(os.Stderr, "  centaur-admin install <pack> -db dir  - install a pack into a store")
	fmt.Fprintln(os.Stderr, "  centaur-admin verify -db dir          - verify the installed snapshot")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "inspect":
		inspect(os.Args[2:])
	case "install":
		install(os.Args[2:])
	case "verify":
		verify(os.Args[2:])
	default:
		usage()
	}
}

func readPack(path string) *weights.Pack {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("opening pack")
	}
	defer f.Close()
	pack, err := weights.ReadPack(f)
	if err != nil {
		log.Fatal().Err(err).Msg("reading pack")
	}
	return pack
}

func openRegistry(fs *flag.FlagSet, args []string) *weights.Registry {
	db := fs.String("db", "", "weight store directory")
	if err := fs.Parse(args); err != nil {
		usage()
	}
	if *db == "" {
		usage()
	}
	store, err := weights.OpenBadger(*db)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store")
	}
	reg, err := weights.Open(store)
	if err != nil {
		log.Fatal().Err(err).Msg("opening registry")
	}
	return reg
}

func inspect(args []string) {
	if len(args) != 1 {
		usage()
	}
	pack := readPack(args[0])
	fmt.Printf("version: %d\nshift:   %d\npayload: %d bytes\n",
		pack.Version, pack.Shift, weights.PackPayloadSize())
	for _, slot := range weights.Schedule() {
		fmt.Printf("  %-12s %7d bytes\n", slot.Key, slot.Length)
	}
}

func install(args []string) {
	if len(args) < 1 {
		usage()
	}
	pack := readPack(args[0])
	fs := flag.NewFlagSet("install", flag.ExitOnError)
	reg := openRegistry(fs, args[1:])
	if err := reg.Install(pack); err != nil {
		log.Fatal().Err(err).Msg("installing pack")
	}
	fmt.Printf("installed version %d\n", pack.Version)
}

func verify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	reg := openRegistry(fs, args)
	snap, err := reg.Current()
	if err != nil {
		log.Fatal().Err(err).Msg("no installed model")
	}
	if err := weights.Verify(context.Background(), snap); err != nil {
		log.Fatal().Err(err).Msg("verification failed")
	}
	fmt.Printf("version %d verified: %d blobs ok\n", snap.Version, len(weights.Schedule()))
}
