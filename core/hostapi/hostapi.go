// Package hostapi enumerates the functions a compiled module imports from
// its host environment: storage access, call/transaction/block context,
// hashing, cross-contract calls, and the abort/revert control paths. The
// backend emits one WASM import per ID it actually uses; the mock runtime
// package has a case for every ID, though several of them (the object
// read/write calls, argpack access, co_call, secp256k1 recovery) return an
// error instead of a result.
package hostapi

import "fmt"

// ID identifies one host import. Values start at 1, matching the table the
// backend's import section is generated from — 0 is reserved so a
// zero-valued ID reads as "not set" rather than aliasing WriteObject.
type ID uint32

const (
	WriteObject ID = iota + 1
	ReadObject
	DeleteObject
	ReadObjectLength
	GetCallSender
	GetCallSenderLength
	GetCallContract
	GetCallContractLength
	GetCallGasLeft
	GetCallGasLimit
	GetOpContract
	GetOpContractLength
	GetCallArgPack
	GetCallArgPackLength
	SetCallResult
	GetBlockNumber
	GetBlockTimestamp
	GetBlockRandomSeed
	GetTxTimestamp
	GetTxNonce
	GetTxIndex
	GetTxHash
	GetTxHashLength
	GetTxSender
	GetTxSenderLength
	GetTxGasLimit
	Abort
	Println
	Log
	SHA256
	SM3
	KECCAK256
	EthSecp256k1Recovery
	CoCall
	GetCallResult
	GetCallResultLength
	Revert
)

// ValType is the WASM value type of a host import's parameter or result.
type ValType uint8

const (
	I32 ValType = iota
	I64
)

// Signature is the WASM import signature the backend must declare for an
// ID: a fixed-arity list of I32/I64 parameters and at most one result.
type Signature struct {
	Params  []ValType
	HasResult bool
	Result  ValType
}

type entry struct {
	name string
	sig  Signature
}

// ptr and length shorten the signature table below; every host pointer
// and length on this ABI is a linear-memory i32 offset or byte count.
const ptr = I32
const length = I32

var table = map[ID]entry{
	WriteObject:          {"write_object", Signature{Params: []ValType{ptr, length, ptr, ptr, length, ptr, ptr, length}}},
	ReadObject:           {"read_object", Signature{Params: []ValType{ptr, length, ptr, ptr, length, ptr, ptr}}},
	DeleteObject:         {"delete_object", Signature{Params: []ValType{ptr, length, ptr, ptr, length, ptr}}},
	ReadObjectLength:     {"read_object_length", Signature{Params: []ValType{ptr, length, ptr, ptr, length, ptr}, HasResult: true, Result: I32}},
	GetCallSender:        {"get_call_sender", Signature{Params: []ValType{ptr}}},
	GetCallSenderLength:  {"get_call_sender_length", Signature{HasResult: true, Result: I32}},
	GetCallContract:      {"get_call_contract", Signature{Params: []ValType{ptr}}},
	GetCallContractLength: {"get_call_contract_length", Signature{HasResult: true, Result: I32}},
	GetCallGasLeft:       {"get_call_gas_left", Signature{HasResult: true, Result: I64}},
	GetCallGasLimit:      {"get_call_gas_limit", Signature{HasResult: true, Result: I64}},
	GetOpContract:        {"get_op_contract", Signature{Params: []ValType{ptr}}},
	GetOpContractLength:  {"get_op_contract_length", Signature{HasResult: true, Result: I32}},
	GetCallArgPack:       {"get_call_argpack", Signature{Params: []ValType{ptr}}},
	GetCallArgPackLength: {"get_call_argpack_length", Signature{HasResult: true, Result: I32}},
	SetCallResult:        {"set_call_result", Signature{Params: []ValType{ptr, length}}},
	GetBlockNumber:       {"get_block_number", Signature{HasResult: true, Result: I64}},
	GetBlockTimestamp:    {"get_block_timestamp", Signature{HasResult: true, Result: I64}},
	GetBlockRandomSeed:   {"get_block_random_seed", Signature{Params: []ValType{ptr}}},
	GetTxTimestamp:       {"get_tx_timestamp", Signature{HasResult: true, Result: I64}},
	GetTxNonce:           {"get_tx_nonce", Signature{HasResult: true, Result: I64}},
	GetTxIndex:           {"get_tx_index", Signature{HasResult: true, Result: I32}},
	GetTxHash:            {"get_tx_hash", Signature{Params: []ValType{ptr}}},
	GetTxHashLength:      {"get_tx_hash_length", Signature{HasResult: true, Result: I32}},
	GetTxSender:          {"get_tx_sender", Signature{Params: []ValType{ptr}}},
	GetTxSenderLength:    {"get_tx_sender_length", Signature{HasResult: true, Result: I32}},
	GetTxGasLimit:        {"get_tx_gas_limit", Signature{HasResult: true, Result: I64}},
	Abort:                {"abort", Signature{Params: []ValType{ptr, length}}},
	Println:              {"println", Signature{Params: []ValType{ptr, length}}},
	Log:                  {"log", Signature{Params: []ValType{ptr, length, ptr, ptr, length}}},
	SHA256:               {"sha256", Signature{Params: []ValType{ptr, length, ptr}}},
	SM3:                  {"sm3", Signature{Params: []ValType{ptr, length, ptr}}},
	KECCAK256:            {"keccak256", Signature{Params: []ValType{ptr, length, ptr}}},
	EthSecp256k1Recovery: {"eth_secp256k1_recovery", Signature{Params: []ValType{ptr, ptr, ptr, ptr, ptr}, HasResult: true, Result: I32}},
	CoCall:               {"co_call", Signature{Params: []ValType{ptr, length, ptr, length, ptr, length}, HasResult: true, Result: I32}},
	GetCallResult:        {"get_call_result", Signature{Params: []ValType{ptr}}},
	GetCallResultLength:  {"get_call_result_length", Signature{HasResult: true, Result: I32}},
	Revert:               {"revert", Signature{Params: []ValType{I32, ptr, length}}},
}

// Name returns the import's symbol name as it appears in the module's
// import section, e.g. "write_object".
func (id ID) Name() string {
	if e, ok := table[id]; ok {
		return e.name
	}
	return fmt.Sprintf("hostapi.ID(%d)", uint32(id))
}

// Sig returns the import's WASM signature, and false if id is unknown.
func (id ID) Sig() (Signature, bool) {
	e, ok := table[id]
	return e.sig, ok
}

func (id ID) String() string { return id.Name() }

var byName map[string]ID

func init() {
	byName = make(map[string]ID, len(table))
	for id, e := range table {
		byName[e.name] = id
	}
}

// Lookup resolves an import symbol name back to its ID.
func Lookup(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// All returns every ID in ascending order, for import-section generation
// and documentation tools.
func All() []ID {
	out := make([]ID, 0, len(table))
	for id := range table {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
