// Command catalogcheck validates a catalog directory and prints its totals.
//
// Usage:
//
//	catalogcheck [dir]
package main

import (
	"fmt"
	"os"

	"github.com/udisondev/rsckernel/internal/config"
	"github.com/udisondev/rsckernel/internal/data"
)

func main() {
	dir := config.DefaultKernel().CatalogDir
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	catalog, err := data.LoadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog %s: %v\n", dir, err)
		os.Exit(1)
	}

	s := catalog.Stats()
	fmt.Printf("catalog %s OK\n", dir)
	fmt.Printf("  items:       %d\n", s.Items)
	fmt.Printf("  npcs:        %d\n", s.Npcs)
	fmt.Printf("  drop tables: %d\n", s.DropTables)
	fmt.Printf("  rare tables: %d\n", s.RareTables)
	fmt.Printf("  objects:     %d\n", s.Objects)
	fmt.Printf("  spawns:      %d\n", s.Spawns)
}
