package main

import (
	"testing"

	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
	"github.com/synnergy-labs/sir-compiler/core/yul"
	"github.com/synnergy-labs/sir-compiler/internal/testutil"
)

const sampleYul = `
object "Sample" {
  code {
    function double(x) -> result {
      result := mul(x, 2)
    }
  }
}
`

// TestCompileReadsFileFromDisk exercises the same read-source/parse/lower
// path compileCmd's RunE follows, but against a sandboxed file on disk
// rather than an in-memory string, so the CLI's file I/O step is covered
// too.
func TestCompileReadsFileFromDisk(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	defer sb.Cleanup()

	if err := sb.WriteFile("sample.yul", []byte(sampleYul), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	src, err := sb.ReadFile("sample.yul")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	obj, err := yul.Parse(string(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := ir.NewContext()
	mod, err := yul.Lower(ctx, "Sample", obj)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	stubs, err := backend.BuildStubs(mod)
	if err != nil {
		t.Fatalf("BuildStubs: %v", err)
	}
	if len(stubs) != 1 || stubs[0].Name != "double" {
		t.Fatalf("expected a single exported function named double, got %+v", stubs)
	}
}
