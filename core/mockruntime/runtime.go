package mockruntime

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// DumpStorage returns a snapshot of the runtime's storage cells keyed by
// their raw composite key. The values are the encoded form written by
// Store; the returned map is a copy and has no defined iteration order.
func (rt *Runtime) DumpStorage() map[string][]byte {
	out := make(map[string][]byte, len(rt.storage))
	for k, v := range rt.storage {
		out[k] = v
	}
	return out
}

// Options mirrors the compiler's CompilerOptions that affect runtime
// semantics rather than just codegen shape: whether checked arithmetic
// aborts on overflow.
type Options struct {
	OverflowCheck bool
}

// Event is one emitted log entry, recorded by the ir.builtin.call_log and
// ir.builtin.print intrinsics and the println/log host calls.
type Event struct {
	Topic string
	Data  []byte
}

// Receipt is returned by Invoke: the call's outcome, in the same shape the
// teacher's interpreter reports one (status/return data/logs/error).
type Receipt struct {
	InvocationID string
	Status       bool
	ReturnData   Value
	ReturnBytes  []byte
	Events       []Event
	Error        string
}

// Runtime holds everything a compiled module's host calls read or mutate
// across a single invocation: the caller and contract address, block and
// transaction context, one storage map shared by every module invoked on
// this Runtime, pending events, and the abort/revert signal an in-flight
// call raises to unwind the interpreter. It keeps no account balances.
type Runtime struct {
	Options Options
	Caller  string
	Address string

	BlockNumber    uint64
	BlockTimestamp uint64
	TxHash         []byte
	TxNonce        uint64

	storage map[string][]byte
	logs    []Event

	lastCallResult []byte
	abortMsg       string
	reverted       bool
	revertCode     int32
}

// NewRuntime constructs a Runtime with empty storage, ready to load a
// compiled module and invoke its entry points.
func NewRuntime(opts Options) *Runtime {
	return &Runtime{
		Options: opts,
		storage: make(map[string][]byte),
	}
}

type abortSignal struct{ msg string }

func (a *abortSignal) Error() string { return a.msg }

func (rt *Runtime) abortf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	rt.abortMsg = msg
	return &abortSignal{msg: msg}
}

// resolvePath concretizes a StoragePath's dynamic key components against
// the current call frame, folding the result into a single composite key.
func (it *interp) resolvePath(path backend.StoragePath) (backend.StoragePath, error) {
	resolved := backend.StoragePath{ExtraArgs: path.ExtraArgs}
	for _, k := range path.Keys {
		if k.IsConst() {
			resolved.Keys = append(resolved.Keys, k)
			continue
		}
		v, err := it.evalExpr(*k.Val)
		if err != nil {
			return backend.StoragePath{}, err
		}
		resolved.Keys = append(resolved.Keys, backend.PathExpr{Const: valueKeyBytes(v)})
	}
	return resolved, nil
}

func valueKeyBytes(v Value) []byte {
	switch v.Kind {
	case VInt:
		return backend.Uleb128(v.Int)
	case VStr:
		return []byte(v.Str)
	case VBool:
		if v.Bool {
			return []byte{1}
		}
		return []byte{0}
	case VBytes:
		return v.Bytes
	default:
		return nil
	}
}

func storageKey(path backend.StoragePath) string {
	var key []byte
	for _, k := range path.Keys {
		key = append(key, k.Const...)
	}
	for _, extra := range path.ExtraArgs {
		var tmp [binary.MaxVarintLen32]byte
		n := binary.PutUvarint(tmp[:], uint64(extra))
		key = append(key, tmp[:n]...)
	}
	return string(key)
}

// Load reads a storage cell, returning the zero Value for ty when the cell
// was never written (matching the write-once/read-default-on-empty
// convention the storage model documents).
func (rt *Runtime) Load(path backend.StoragePath, ty *ir.Type) (Value, error) {
	raw, ok := rt.storage[storageKey(path)]
	if !ok {
		return zeroValue(ty), nil
	}
	return decodeStorageValue(raw, ty)
}

// Store writes val to the storage cell named by path.
func (rt *Runtime) Store(path backend.StoragePath, val Value) error {
	raw, err := encodeStorageValue(val)
	if err != nil {
		return err
	}
	rt.storage[storageKey(path)] = raw
	return nil
}

// Emit records a pending log event (the call_log intrinsic / LOG host call).
func (rt *Runtime) Emit(topic string, data []byte) {
	rt.logs = append(rt.logs, Event{Topic: topic, Data: data})
}

// Events returns the events recorded so far, oldest first.
func (rt *Runtime) Events() []Event {
	out := make([]Event, len(rt.logs))
	copy(out, rt.logs)
	return out
}

// sha256Sum and keccak256Sum back the SHA256 and KECCAK256 host-API
// entries. SHA256 uses the standard library, matching how the
// interpreted-bytecode VM hashes transaction payloads; KECCAK256 goes
// through go-ethereum's crypto package since the standard library has no
// Keccak implementation.
func sha256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func keccak256Sum(data []byte) []byte {
	return crypto.Keccak256(data)
}

// sortedStorageKeys returns the runtime's storage keys in ascending byte
// order. Nothing in the module calls it.
func (rt *Runtime) sortedStorageKeys() []string {
	keys := make([]string, 0, len(rt.storage))
	for k := range rt.storage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
