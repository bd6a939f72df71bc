// Command kalavdf runs a single class-group VDF session to completion
// from a hex-encoded challenge, printing progress and the resulting
// Wesolowski proof. It exercises internal/session end to end, the way
// a node operator would verify a VDF engine build before wiring it
// into a larger service.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/enigmarikki/kala/internal/challenge"
	"github.com/enigmarikki/kala/internal/session"
)

var (
	challengeHex = flag.String("challenge", "", "32-byte hex challenge (random if omitted)")
	payload      = flag.String("payload", "", "derive the challenge from an arbitrary payload instead of -challenge")
	iterations   = flag.Uint64("iterations", 100000, "VDF iteration target T")
	discBits     = flag.Int("disc-bits", 1024, "discriminant bit length")
	segmentSize  = flag.Uint64("segment-size", session.DefaultSegmentSize, "checkpoint segment size (0 disables)")
	streamProofs = flag.Bool("stream-proofs", false, "attach a Wesolowski proof to every checkpoint segment")
	debug        = flag.Bool("debug", false, "enable debug logging")
	selfTest     = flag.Bool("self-test", false, "run a fixed-discriminant health check and exit")
)

func main() {
	flag.Parse()

	logger := newLogger(*debug)
	defer logger.Sync()

	if *selfTest {
		if err := session.SelfTest(); err != nil {
			logger.Fatal("self-test failed", zap.Error(err))
		}
		fmt.Println("self-test passed")
		return
	}

	ch, err := resolveChallenge(*challengeHex, *payload)
	if err != nil {
		logger.Fatal("invalid challenge", zap.Error(err))
	}

	cfg := session.Config{
		SegmentSize:        *segmentSize,
		StreamProofs:       *streamProofs,
		CallbackIntervalMS: 500,
		Logger:             logger,
	}

	sess, err := session.New(cfg)
	if err != nil {
		logger.Fatal("failed to construct session", zap.Error(err))
	}

	sess.SetCallbacks(func(current, target uint64) {
		logger.Info("progress",
			zap.Uint64("iteration", current),
			zap.Uint64("target", target),
		)
	}, func(ok bool, iterations uint64) {
		logger.Info("completed", zap.Bool("ok", ok), zap.Uint64("iterations", iterations))
	})

	if err := sess.Start(ch, nil, *iterations, *discBits); err != nil {
		logger.Fatal("failed to start session", zap.Error(err))
	}

	if err := sess.Wait(context.Background(), 0); err != nil {
		logger.Fatal("wait failed", zap.Error(err))
	}

	if !sess.IsComplete() {
		fmt.Fprintln(os.Stderr, "session did not complete")
		os.Exit(1)
	}

	proof, err := sess.GenerateProof(0)
	if err != nil {
		logger.Fatal("proof generation failed", zap.Error(err))
	}

	fmt.Printf("proof (%d bytes): %s\n", len(proof), hex.EncodeToString(proof))
}

func resolveChallenge(h, payloadStr string) ([32]byte, error) {
	var c [32]byte
	if payloadStr != "" {
		return challenge.DeriveFromPayload("kalavdf.cli", []byte(payloadStr)), nil
	}
	if h == "" {
		if _, err := rand.Read(c[:]); err != nil {
			return c, err
		}
		return c, nil
	}
	buf, err := hex.DecodeString(h)
	if err != nil {
		return c, err
	}
	if len(buf) != 32 {
		return c, fmt.Errorf("challenge must be 32 bytes, got %d", len(buf))
	}
	copy(c[:], buf)
	return c, nil
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
