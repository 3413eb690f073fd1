package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synnergy-labs/sir-compiler/core/ir"
	"github.com/synnergy-labs/sir-compiler/core/ir/parser"
	"github.com/synnergy-labs/sir-compiler/core/mockruntime"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <file.sir> <entry> <argpack-hex>",
	Short: "Invoke an exported entry point of a SIR module against the mock runtime",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		ctx := ir.NewContext()
		mod, err := parser.Parse(ctx, string(src))
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		ctx.AddModule(mod)

		argpack, err := hex.DecodeString(args[2])
		if err != nil {
			return fmt.Errorf("decode argpack hex: %w", err)
		}

		loaded, err := mockruntime.LoadModule(ctx, mod)
		if err != nil {
			return fmt.Errorf("load module: %w", err)
		}
		rt := mockruntime.NewRuntime(mockruntime.Options{OverflowCheck: flagOverflowCheck})
		rec := rt.Invoke(loaded, args[1], argpack)

		if !rec.Status {
			log.WithField("error", rec.Error).Warn("invocation aborted")
			fmt.Printf("ABORT: %s\n", rec.Error)
			return nil
		}
		fmt.Printf("OK: %s\n", hex.EncodeToString(rec.ReturnBytes))
		for _, e := range rec.Events {
			fmt.Printf("event %s: %s\n", e.Topic, hex.EncodeToString(e.Data))
		}
		return nil
	},
}
