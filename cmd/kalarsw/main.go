// Command kalarsw solves a single RSW timelock puzzle from hex-encoded
// parameters on the CPU device, printing the recovered 256-bit key. It
// exercises internal/rsw end to end.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/enigmarikki/kala/internal/rsw"
)

var (
	nHex = flag.String("n", "", "2048-bit modulus, hex")
	aHex = flag.String("a", "", "base, hex")
	cHex = flag.String("c", "", "challenge constant, hex")
	tVal = flag.Uint64("t", 1<<20, "squaring count T")
)

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *nHex == "" || *aHex == "" || *cHex == "" {
		logger.Fatal("n, a, and c are required")
	}

	puzzle, err := rsw.PuzzleFromHex(*nHex, *aHex, *cHex, uint32(*tVal))
	if err != nil {
		logger.Fatal("invalid puzzle", zap.Error(err))
	}

	solver := rsw.New(rsw.NewCPUDevice())
	result := solver.Solve(context.Background(), puzzle)
	if !result.OK {
		logger.Fatal("solve failed", zap.Error(result.Err))
	}

	fmt.Println(hex.EncodeToString(result.Key[:]))
}
