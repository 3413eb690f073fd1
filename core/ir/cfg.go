package ir

import "fmt"

// BasicBlock is an ordered sequence of instructions. The last instruction,
// once the block is sealed, is always a terminator (I3); the builder is
// responsible for enforcing that, not this type.
type BasicBlock struct {
	ID     BasicBlockID
	Instrs []*Instr
}

func (b *BasicBlock) Append(i *Instr) { b.Instrs = append(b.Instrs, i) }

// Terminator returns the block's last instruction if it is a terminator,
// or nil if the block is not yet sealed.
func (b *BasicBlock) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// ControlFlowGraph owns a function's basic blocks and entry point.
type ControlFlowGraph struct {
	entry  BasicBlockID
	blocks map[BasicBlockID]*BasicBlock
	order  []BasicBlockID // insertion order, walked by the printer
}

func NewControlFlowGraph() *ControlFlowGraph {
	return &ControlFlowGraph{blocks: make(map[BasicBlockID]*BasicBlock)}
}

// AppendNewBlock creates a fresh, empty block under id and records it as the
// entry block if this is the CFG's first block.
func (c *ControlFlowGraph) AppendNewBlock(id BasicBlockID) *BasicBlock {
	bb := &BasicBlock{ID: id}
	if len(c.order) == 0 {
		c.entry = id
	}
	c.blocks[id] = bb
	c.order = append(c.order, id)
	return bb
}

func (c *ControlFlowGraph) UpdateBlock(bb *BasicBlock) { c.blocks[bb.ID] = bb }

func (c *ControlFlowGraph) DeleteBlock(id BasicBlockID) {
	delete(c.blocks, id)
	for i, bid := range c.order {
		if bid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *ControlFlowGraph) GetBlock(id BasicBlockID) (*BasicBlock, bool) {
	bb, ok := c.blocks[id]
	return bb, ok
}

// GetBlocks returns every block in insertion order, matching the order the
// printer and backend walk the CFG in.
func (c *ControlFlowGraph) GetBlocks() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.blocks[id])
	}
	return out
}

func (c *ControlFlowGraph) Entry() BasicBlockID { return c.entry }

func (c *ControlFlowGraph) SetEntry(id BasicBlockID) { c.entry = id }

func (c *ControlFlowGraph) GetEntryBlock() (*BasicBlock, bool) { return c.GetBlock(c.entry) }

// VarDecl records a local's declared type, independent of the point in the
// CFG it was introduced — the vars map on FunctionDefinition is the single
// source of truth a backend or printer consults to type an IdentifierID.
type VarDecl struct {
	ID   IdentifierID
	Name string
	Type *Type
}

// FunctionDefinition is a single function: its signature, its locals table,
// and its control-flow graph.
type FunctionDefinition struct {
	Name       string
	Params     []VarDecl
	Vars       map[IdentifierID]VarDecl
	Ret        *Type
	IsExternal bool
	CFG        *ControlFlowGraph
	metadata   MetadataMap
}

func NewFunctionDefinition(name string, params []VarDecl, ret *Type, isExternal bool) *FunctionDefinition {
	vars := make(map[IdentifierID]VarDecl, len(params))
	for _, p := range params {
		vars[p.ID] = p
	}
	return &FunctionDefinition{
		Name:       name,
		Params:     params,
		Vars:       vars,
		Ret:        ret,
		IsExternal: isExternal,
		CFG:        NewControlFlowGraph(),
		metadata:   MetadataMap{},
	}
}

func (f *FunctionDefinition) Metadata() MetadataMap { return f.metadata }

// DeclareVar records a local's type so later GetField/storage lowering can
// recover it from just an IdentifierID.
func (f *FunctionDefinition) DeclareVar(id IdentifierID, name string, ty *Type) {
	f.Vars[id] = VarDecl{ID: id, Name: name, Type: ty}
}

// VarType looks up a local's declared type, panicking if the builder
// produced a reference to an identifier that was never declared — that is
// always a bug in the emitting code, never user input.
func (f *FunctionDefinition) VarType(id IdentifierID) *Type {
	v, ok := f.Vars[id]
	if !ok {
		panic(fmt.Sprintf("identifier %%%d has no declaration in function %q", id, f.Name))
	}
	return v.Type
}

// StateEntry is one field of a Contract's persistent state block.
type StateEntry struct {
	Name string
	Type *Type
}

// Contract is the at-most-one contract a Module may define: its state
// layout plus the functions that operate on it (including storage-backed
// entry points the backend synthesizes from intrinsics).
type Contract struct {
	Name      string
	States    []StateEntry
	Functions []*FunctionDefinition
}

func NewContract(name string) *Contract { return &Contract{Name: name} }

func (c *Contract) AddState(name string, ty *Type) {
	c.States = append(c.States, StateEntry{Name: name, Type: ty})
}

func (c *Contract) AddFunction(f *FunctionDefinition) { c.Functions = append(c.Functions, f) }

func (c *Contract) GetFunction(name string) (*FunctionDefinition, bool) {
	for _, f := range c.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Module is the top-level compilation unit: named type definitions, free
// functions, and an optional single contract.
type Module struct {
	Name      string
	Types     []*TypeDefinition
	Functions []*FunctionDefinition
	Contract  *Contract
}

func NewModule(name string) *Module { return &Module{Name: name} }

func (m *Module) AddType(td *TypeDefinition) { m.Types = append(m.Types, td) }

func (m *Module) AddFunction(f *FunctionDefinition) { m.Functions = append(m.Functions, f) }

func (m *Module) GetFunction(name string) (*FunctionDefinition, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	if m.Contract != nil {
		return m.Contract.GetFunction(name)
	}
	return nil, false
}

// Context bundles everything a single compilation pass threads through the
// front-end, builder, and backend: the interned type universe and the
// metadata registry. Keeping these per-compilation (rather than process
// globals, as design note §9 calls out) means concurrent compilations and
// tests never share state.
type Context struct {
	Types    *TypeTable
	Metadata *Registry
	Modules  map[string]*Module
}

func NewContext() *Context {
	return &Context{
		Types:    NewTypeTable(),
		Metadata: NewRegistry(),
		Modules:  make(map[string]*Module),
	}
}

func (c *Context) AddModule(m *Module) { c.Modules[m.Name] = m }

func (c *Context) GetModule(name string) (*Module, bool) {
	m, ok := c.Modules[name]
	return m, ok
}
