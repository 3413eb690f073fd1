package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/synnergy-labs/sir-compiler/core/ir"
	"github.com/synnergy-labs/sir-compiler/core/ir/parser"
	"github.com/synnergy-labs/sir-compiler/core/mockruntime"
	"github.com/synnergy-labs/sir-compiler/core/yul"
	"github.com/synnergy-labs/sir-compiler/cmd/sirc/debugserver"
)

var (
	flagDebugListen    string
	flagDebugRateLimit float64
	flagDebugBurst     int
)

var debugCmd = &cobra.Command{
	Use:   "debug <file.sir|file.yul>",
	Short: "Serve a loaded module's dispatch table, storage, and invoke endpoint over HTTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}

		ctx := ir.NewContext()
		var mod *ir.Module
		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".sir":
			mod, err = parser.Parse(ctx, string(src))
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			ctx.AddModule(mod)
		case ".yul":
			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			obj, perr := yul.Parse(string(src))
			if perr != nil {
				return fmt.Errorf("parse: %w", perr)
			}
			mod, err = yul.Lower(ctx, name, obj)
			if err != nil {
				return fmt.Errorf("lower: %w", err)
			}
		default:
			return fmt.Errorf("unrecognized source extension %q", filepath.Ext(args[0]))
		}

		loaded, err := mockruntime.LoadModule(ctx, mod)
		if err != nil {
			return fmt.Errorf("load module: %w", err)
		}

		limiter := rate.NewLimiter(rate.Limit(flagDebugRateLimit), flagDebugBurst)
		srv := debugserver.New(loaded, mockruntime.Options{OverflowCheck: flagOverflowCheck}, limiter)
		log.WithField("listen", flagDebugListen).WithField("file", args[0]).Info("starting debug server")
		return srv.ListenAndServe(flagDebugListen)
	},
}

func init() {
	debugCmd.Flags().StringVar(&flagDebugListen, "listen", ":9191", "listen address")
	debugCmd.Flags().Float64Var(&flagDebugRateLimit, "rate", 200, "requests per second allowed across the debug surface")
	debugCmd.Flags().IntVar(&flagDebugBurst, "burst", 100, "burst size for the debug surface's rate limiter")
}
