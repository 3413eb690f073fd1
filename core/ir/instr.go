package ir

// IdentifierID names a local introduced by a Declaration instruction within
// a function. IDs are assigned monotonically by the builder, starting at 0
// for each function.
type IdentifierID uint32

// BasicBlockID names a basic block within a function's control-flow graph.
type BasicBlockID uint32

// ExprKind tags the closed set of expression forms (§4.1).
type ExprKind int

const (
	ExprIdentifier ExprKind = iota
	ExprInstr
	ExprLiteral
	ExprNop
)

// Expr is the sum type Identifier | Literal | Call(Instr) | Nop. Nesting an
// instruction inside an expression models the original's permissive
// "add(call(...), 1)" surface; the builder (core/ir/builder) stores nested
// instructions as given, without hoisting them into temporaries, and the
// printer (core/ir/printer) writes them inline in the textual form.
type Expr struct {
	Kind    ExprKind
	Ident   IdentifierID
	Nested  *Instr
	Literal Literal
}

func Identifier(id IdentifierID) Expr { return Expr{Kind: ExprIdentifier, Ident: id} }
func LiteralExpr(l Literal) Expr      { return Expr{Kind: ExprLiteral, Literal: l} }
func Nop() Expr                       { return Expr{Kind: ExprNop} }
func InstrExpr(i *Instr) Expr         { return Expr{Kind: ExprInstr, Nested: i} }

// AsIdentifier panics if the expression is not an Identifier, mirroring the
// original's From<Expr> for IdentifierId conversion used at well-typed call
// sites (e.g. a branch condition that must already be bound to a local).
func (e Expr) AsIdentifier() IdentifierID {
	if e.Kind != ExprIdentifier {
		panic("expected Identifier expression")
	}
	return e.Ident
}

// BinaryOp is the closed set of binary arithmetic/bitwise operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpExp
	OpAnd
	OpBitAnd
	OpOr
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpSar
)

func (op BinaryOp) String() string {
	return [...]string{"add", "sub", "mul", "div", "mod", "exp", "and", "bit_and", "or", "bit_or", "bit_xor", "shl", "shr", "sar"}[op]
}

// CmpOp is the closed set of comparison operators.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpGt
	CmpGe
	CmpLt
	CmpLe
)

func (op CmpOp) String() string {
	return [...]string{"eq", "ne", "gt", "ge", "lt", "le"}[op]
}

// FuncNameKind distinguishes the call-target namespaces: a user-defined
// function, a backend intrinsic, a host-API call, or a target-level
// "other" symbol referenced directly by mangled name.
type FuncNameKind int

const (
	FuncUser FuncNameKind = iota
	FuncIntrinsic
	FuncHostAPI
	FuncOther
)

// FuncName names a call target and the namespace it resolves in.
type FuncName struct {
	Kind FuncNameKind
	Name string
}

// InstrKind tags the closed instruction repertoire (§4.1 table).
type InstrKind int

const (
	InstrDeclaration InstrKind = iota
	InstrAssignment
	InstrRet
	InstrBr
	InstrBrIf
	InstrMatch
	InstrNot
	InstrBitNot
	InstrBinary
	InstrCmp
	InstrAlloca
	InstrMalloc
	InstrFree
	InstrGetField
	InstrSetField
	InstrGetStoragePath
	InstrStorageLoad
	InstrStorageStore
	InstrCall
	InstrIntCast
)

// Instr is a single tagged-variant instruction plus its metadata map.
type Instr struct {
	Kind InstrKind

	// Declaration / Assignment
	ID      IdentifierID
	InitVal *Expr // Declaration only; nil means uninitialized
	Val     Expr  // Assignment

	// shared type slot: Declaration.Type, Alloca/Malloc.Type,
	// GetField/StorageLoad/Call.ResultType, IntCast.TargetType
	Type *Type

	// Ret
	RetVal *Expr

	// Br
	Target BasicBlockID

	// BrIf
	Cond   Expr
	ThenBB BasicBlockID
	ElseBB BasicBlockID

	// Match
	Scrutinee  Expr
	Default    BasicBlockID
	JumpTable  map[uint32]BasicBlockID
	jumpOrder  []uint32 // preserves insertion order for deterministic printing

	// Not / BitNot
	Operand Expr

	// Binary / Cmp
	BinOp BinaryOp
	CmpOp CmpOp
	Op1   Expr
	Op2   Expr

	// Alloca / Malloc already use Type above.

	// Free
	Ptr Expr

	// GetField / SetField
	FieldPath []uint32
	SetVal    Expr

	// GetStoragePath
	PathKeys []Expr

	// StorageLoad / StorageStore
	StoragePath Expr
	StoreVal    Expr

	// Call
	FuncName FuncName
	Args     []Expr

	// IntCast
	CastVal Expr

	metadata MetadataMap
}

func newInstr(kind InstrKind) *Instr {
	return &Instr{Kind: kind, metadata: MetadataMap{}}
}

func (i *Instr) Metadata() MetadataMap { return i.metadata }

// IsTerminator reports whether this instruction may end a basic block (I3).
func (i *Instr) IsTerminator() bool {
	switch i.Kind {
	case InstrRet, InstrBr, InstrBrIf, InstrMatch:
		return true
	}
	return false
}

// Constructors mirror InstrDescription's builder functions in the original,
// one per instruction kind, producing a fully formed *Instr ready for
// insertion or for wrapping in an InstrExpr.

func NewDeclaration(id IdentifierID, initVal *Expr, ty *Type) *Instr {
	in := newInstr(InstrDeclaration)
	in.ID, in.InitVal, in.Type = id, initVal, ty
	return in
}

func NewAssignment(id IdentifierID, val Expr) *Instr {
	in := newInstr(InstrAssignment)
	in.ID, in.Val = id, val
	return in
}

func NewRet(val *Expr) *Instr {
	in := newInstr(InstrRet)
	in.RetVal = val
	return in
}

func NewBr(target BasicBlockID) *Instr {
	in := newInstr(InstrBr)
	in.Target = target
	return in
}

func NewBrIf(cond Expr, thenBB, elseBB BasicBlockID) *Instr {
	in := newInstr(InstrBrIf)
	in.Cond, in.ThenBB, in.ElseBB = cond, thenBB, elseBB
	return in
}

// NewMatch builds a dense dispatch terminator. table maps a literal u32 to
// a target block; keys is the insertion order used for deterministic
// printing (matching the original's IndexMap iteration order).
func NewMatch(val Expr, otherwise BasicBlockID, keys []uint32, table map[uint32]BasicBlockID) *Instr {
	in := newInstr(InstrMatch)
	in.Scrutinee, in.Default, in.JumpTable, in.jumpOrder = val, otherwise, table, keys
	return in
}

func (i *Instr) JumpOrder() []uint32 { return i.jumpOrder }

func NewNot(op Expr) *Instr {
	in := newInstr(InstrNot)
	in.Operand = op
	return in
}

func NewBitNot(op Expr) *Instr {
	in := newInstr(InstrBitNot)
	in.Operand = op
	return in
}

func NewBinary(op BinaryOp, a, b Expr) *Instr {
	in := newInstr(InstrBinary)
	in.BinOp, in.Op1, in.Op2 = op, a, b
	return in
}

func NewCmp(op CmpOp, a, b Expr) *Instr {
	in := newInstr(InstrCmp)
	in.CmpOp, in.Op1, in.Op2 = op, a, b
	return in
}

func NewAlloca(ty *Type) *Instr {
	in := newInstr(InstrAlloca)
	in.Type = ty
	return in
}

func NewMalloc(ty *Type) *Instr {
	in := newInstr(InstrMalloc)
	in.Type = ty
	return in
}

func NewFree(ptr Expr) *Instr {
	in := newInstr(InstrFree)
	in.Ptr = ptr
	return in
}

func NewGetField(ptr Expr, path []uint32, resultTy *Type) *Instr {
	in := newInstr(InstrGetField)
	in.Ptr, in.FieldPath, in.Type = ptr, path, resultTy
	return in
}

func NewSetField(ptr Expr, val Expr, path []uint32) *Instr {
	in := newInstr(InstrSetField)
	in.Ptr, in.SetVal, in.FieldPath = ptr, val, path
	return in
}

func NewGetStoragePath(keys []Expr) *Instr {
	in := newInstr(InstrGetStoragePath)
	in.PathKeys = keys
	return in
}

func NewStorageLoad(path Expr, loadTy *Type) *Instr {
	in := newInstr(InstrStorageLoad)
	in.StoragePath, in.Type = path, loadTy
	return in
}

func NewStorageStore(path Expr, val Expr) *Instr {
	in := newInstr(InstrStorageStore)
	in.StoragePath, in.StoreVal = path, val
	return in
}

func NewCall(fn FuncName, args []Expr, retTy *Type) *Instr {
	in := newInstr(InstrCall)
	in.FuncName, in.Args, in.Type = fn, args, retTy
	return in
}

func NewIntCast(val Expr, target *Type) *Instr {
	in := newInstr(InstrIntCast)
	in.CastVal, in.Type = val, target
	return in
}
