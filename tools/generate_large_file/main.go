// Large MacraScript File Generator
//
// This tool generates a large MacraScript pattern for performance testing and
// profiling of the lexer and parser.
//
// Usage:
//
//	go run main.go > large.macra
//	go run main.go 20000000 > large.macra         # Specify target size in bytes
//	go run main.go 20000000 normal > large.macra  # Generate knot instructions
package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/formatter"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
	threads           = 24
)

var palette = []string{
	"red", "orange", "yellow", "green", "blue", "purple",
	"white", "black", "FF69B4", "00CED1", "FFD700", "8B4513",
}

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}
	normal := len(os.Args) > 2 && os.Args[2] == "normal"

	// Fixed seed so runs are comparable
	rng := rand.New(rand.NewSource(42))

	var doc *ast.Document
	if normal {
		doc = ast.NewNormalDocument(threads, generateKnots(rng, targetSize), ast.WithColors(palette...))
	} else {
		doc = ast.NewAlphaDocument(threads, generateRows(rng, targetSize),
			ast.WithColors(palette...),
			ast.WithWidth(threads),
		)
	}

	w := bufio.NewWriter(os.Stdout)
	f := formatter.New(formatter.WithAlignRows(true))
	if err := f.Format(context.Background(), doc, w); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// generateRows produces rows of palette indices until the estimated output
// reaches size bytes. Rows mirror around their centre like a real bracelet.
func generateRows(rng *rand.Rand, size int) []ast.Row {
	var rows []ast.Row
	for written := 0; written < size; {
		cells := make([]int, threads)
		for i := 0; i < threads/2; i++ {
			c := rng.Intn(len(palette)) + 1
			cells[i] = c
			cells[threads-1-i] = c
		}
		rows = append(rows, ast.NewRow(cells...))
		written += len("  ROW: ()\n") + threads*4
	}
	return rows
}

// generateKnots produces a sweep of knots across the threads until the
// estimated output reaches size bytes.
func generateKnots(rng *rand.Rand, size int) []ast.KnotInstruction {
	var knots []ast.KnotInstruction
	for written := 0; written < size; {
		first := rng.Intn(threads-1) + 1
		direction := ast.Left
		second := first + 1
		if rng.Intn(2) == 0 {
			direction, first, second = ast.Right, second, first
		}
		knots = append(knots, ast.NewKnot(direction, first, second, rng.Intn(3)+1))
		written += len("  KNOT RIGHT (00, 00) REPEAT 0\n")
	}
	return knots
}
