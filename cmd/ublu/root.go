package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/ublu/internal/params"
	"github.com/taurusgroup/ublu/pkg/math/sample"
	"github.com/taurusgroup/ublu/pkg/pool"
	"github.com/taurusgroup/ublu/pkg/ublu"
	"go.uber.org/zap"
)

var sessionArg struct {
	Lambda     int
	Degree     int
	Threshold  uint64
	Increments []uint
	Seed       uint64
	Workers    int
	Verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "ublu",
	Short: "run an updatable threshold escrow session",
	Long: `Run an updatable threshold escrow session.

A key is created for the threshold, every increment is folded into the
hint and its tag verified, and the final hint is escrowed and decrypted.

	ublu --degree 10 --threshold 5 --increment 4 --increment 4`,
	Args:          NoExtraArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger(sessionArg.Verbose)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		reached, err := runSession(logger)
		if err != nil {
			logger.Error("session failed", zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "threshold reached: %t\n", reached)
		return nil
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVar(&sessionArg.Lambda, "lambda", params.DefaultLambda, "security parameter, in bits")
	flags.IntVarP(&sessionArg.Degree, "degree", "d", 10, "number of encrypted powers tracked by a hint")
	flags.Uint64VarP(&sessionArg.Threshold, "threshold", "t", 5, "threshold committed in the public key")
	flags.UintSliceVarP(&sessionArg.Increments, "increment", "i", nil, "increment folded into the hint, may be repeated")
	flags.Uint64Var(&sessionArg.Seed, "seed", 0, "seed for deterministic randomness, 0 reads from the operating system")
	flags.IntVarP(&sessionArg.Workers, "workers", "w", 0, "worker goroutines, 0 runs on the calling goroutine")
	flags.BoolVarP(&sessionArg.Verbose, "verbose", "v", false, "log every protocol step")
}

// NoExtraArgs make sure every args has been processed
func NoExtraArgs(_ *cobra.Command, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown args `%v`", args)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

func randomness(seed uint64) io.Reader {
	if seed == 0 {
		return rand.Reader
	}
	return sample.NewSeeded(seed)
}

func runSession(logger *zap.Logger) (bool, error) {
	if sessionArg.Lambda <= 0 {
		return false, errors.New("lambda must be positive")
	}

	opts := []ublu.Option{ublu.WithLogger(logger)}
	if sessionArg.Workers > 0 {
		pl := pool.NewPool(sessionArg.Workers)
		defer pl.TearDown()
		opts = append(opts, ublu.WithPool(pl))
	}

	u, err := ublu.Setup(sessionArg.Lambda, sessionArg.Degree, randomness(sessionArg.Seed), opts...)
	if err != nil {
		return false, err
	}
	pk, sk, hint, err := u.KeyGen(sessionArg.Threshold)
	if err != nil {
		return false, err
	}
	if err = u.VerifyPublicKey(pk); err != nil {
		return false, err
	}
	if err = u.VerifyHint(pk, hint); err != nil {
		return false, err
	}
	logger.Info("key generated", zap.Int("degree", u.Params().Degree))

	var tag *ublu.Tag
	for step, increment := range sessionArg.Increments {
		next, nextTag, err := u.Update(pk, hint, tag, uint64(increment))
		if err != nil {
			return false, fmt.Errorf("increment %d: %w", step, err)
		}
		if err = u.VerifyTag(pk, hint, next, nextTag); err != nil {
			return false, fmt.Errorf("increment %d: %w", step, err)
		}
		hint, tag = next, nextTag
		logger.Info("increment folded", zap.Int("step", step))
	}

	escrow, err := u.Escrow(pk, hint)
	if err != nil {
		return false, err
	}
	if err = u.VerifyEscrow(pk, hint, escrow); err != nil {
		return false, err
	}
	data, err := escrow.MarshalBinary()
	if err != nil {
		return false, err
	}
	logger.Info("escrow verified", zap.Int("bytes", len(data)))

	return u.Decrypt(sk, escrow), nil
}
