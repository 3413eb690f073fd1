package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
	"github.com/synnergy-labs/sir-compiler/core/ir/parser"
	"github.com/synnergy-labs/sir-compiler/core/yul"
)

var compileCmd = &cobra.Command{
	Use:   "compile <file.sir|file.yul>",
	Short: "Compile SIR or Yul source text and print its dispatch table",
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

		stubs, err := backend.BuildStubs(mod)
		if err != nil {
			return fmt.Errorf("build dispatch table: %w", err)
		}
		for _, s := range stubs {
			fmt.Printf("%s -> %s (%d params)\n", s.Name, s.Internal, len(s.ParamTypes))
		}
		log.WithField("count", len(stubs)).Info("dispatch table built")
		return nil
	},
}
