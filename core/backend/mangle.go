// Package backend lowers a compiled Module into the metadata the mock
// runtime needs to execute it: per-function dispatch stubs, a runtime class
// table for reflective intrinsics, storage-path lowering, the intrinsic
// registry, and the checked-arithmetic overflow policy.
package backend

import (
	"strings"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// InternalMethodPrefix tags every mangled internal function name, keeping
// them lexically distinct from both the exported dispatch stubs and any
// user-defined name in the same namespace.
const InternalMethodPrefix = "sir_internal"

// Mangle produces the internal function name a dispatch stub calls after
// decoding its arguments: {prefix}_{qualified_name}_{param-sign...}_{ret-sign}.
func Mangle(qualifiedName string, params []*ir.Type, ret *ir.Type) string {
	parts := make([]string, 0, len(params)+3)
	parts = append(parts, InternalMethodPrefix, qualifiedName)
	for _, p := range params {
		parts = append(parts, p.FuncSignTyStr())
	}
	parts = append(parts, ret.FuncSignTyStr())
	return strings.Join(parts, "_")
}

// InnerStart and Start are the two target-level entry points every compiled
// module exposes: InnerStart runs init in dependency order (runtime table,
// const storage paths, heap), Start is an empty body reserved for the host's
// gas-meter sequencing.
const (
	InnerStart = "_inner_start"
	Start      = "_start"
)
