package yul

import (
	"fmt"
	"math/big"

	"github.com/synnergy-labs/sir-compiler/core/ir"
	"github.com/synnergy-labs/sir-compiler/core/ir/builder"
)

// LoweringError reports a Yul construct this front-end does not translate to
// SIR, either because the construct is EVM-opcode-conformance territory this
// project never undertook, or because the construct requires information
// (a dynamic memory offset, a second return value) the target instruction
// set cannot express.
type LoweringError struct {
	Msg string
}

func (e *LoweringError) Error() string { return "yul: " + e.Msg }

func unsupported(name string) error {
	return &LoweringError{Msg: fmt.Sprintf("builtin %q is not supported by this lowering", name)}
}

// memSize bounds the fixed-size byte buffer mload/mstore address into. Yul's
// real memory model expands on demand; SIR's Alloca wants a type up front, so
// this front-end allocates a generously sized arena per function instead of
// modeling expansion.
const memSize = 4096

// compileState is shared across every function lowered out of one object:
// the one piece of cross-function information a call site needs is how many
// values its callee returns, since SIR's Call has a single result type.
type compileState struct {
	ctx      *ir.Context
	word     *ir.Type
	voidTy   *ir.Type
	u8       *ir.Type
	retArity map[string]int
}

// funcCtx is the lowering cursor for one function body: the shared compile
// state, the builder positioned inside that function, and the function-local
// variable table. Yul blocks don't get their own scope here — every let
// introduces a function-wide binding, so two sibling blocks declaring the
// same name collide. Real Yul programs don't rely on that shadowing, and the
// simplification keeps identifier resolution a flat map instead of a scope
// stack.
type funcCtx struct {
	st *compileState
	b  *builder.Builder

	vars map[string]ir.IdentifierID

	hasRet bool
	retVar ir.IdentifierID

	memID       ir.IdentifierID
	memAllocated bool
}

// Lower parses nothing (see Parse) and translates a Yul object's AST into a
// SIR module named name, registering it on ctx.
func Lower(ctx *ir.Context, name string, obj *Object) (*ir.Module, error) {
	st := &compileState{
		ctx:      ctx,
		word:     ctx.Types.Int(ir.U256),
		voidTy:   ctx.Types.Void(),
		u8:       ctx.Types.Int(ir.U8),
		retArity: map[string]int{},
	}
	return lowerObject(st, name, obj)
}

func lowerObject(st *compileState, name string, obj *Object) (*ir.Module, error) {
	mod := ir.NewModule(name)
	con := ir.NewContract(name)
	mod.Contract = con

	b := builder.New(st.ctx)
	b.SetModule(mod)
	b.SetContract(con)

	fnDefs, rest := splitFunctionDefs(obj.Code.Stmts)

	// Record every top-level function's return arity before lowering any
	// body, so forward and sibling calls resolve regardless of source order.
	for _, fd := range fnDefs {
		if len(fd.Returns) > 1 {
			return nil, &LoweringError{Msg: fmt.Sprintf("function %q: multiple return values are not supported", fd.Name)}
		}
		st.retArity[fd.Name] = len(fd.Returns)
	}

	for _, fd := range fnDefs {
		if err := lowerFunctionDef(st, b, fd, true); err != nil {
			return nil, err
		}
	}

	if len(rest) > 0 {
		init := &FunctionDefStmt{Name: "init", Body: &Block{Stmts: rest}}
		st.retArity["init"] = 0
		if err := lowerFunctionDef(st, b, init, true); err != nil {
			return nil, err
		}
	}

	st.ctx.AddModule(mod)

	for _, child := range obj.Objects {
		if _, err := lowerObject(st, child.Name, child); err != nil {
			return nil, err
		}
	}

	return mod, nil
}

// splitFunctionDefs separates the function statements declared directly in
// an object's code block (lowered as dispatchable contract functions, per
// the design note above) from everything else (lowered into a synthesized
// "init" function, the contract's constructor).
func splitFunctionDefs(stmts []Stmt) ([]*FunctionDefStmt, []Stmt) {
	var fns []*FunctionDefStmt
	var rest []Stmt
	for _, s := range stmts {
		if fd, ok := s.(*FunctionDefStmt); ok {
			fns = append(fns, fd)
			continue
		}
		rest = append(rest, s)
	}
	return fns, rest
}

func lowerFunctionDef(st *compileState, b *builder.Builder, fd *FunctionDefStmt, isExternal bool) error {
	if len(fd.Returns) > 1 {
		return &LoweringError{Msg: fmt.Sprintf("function %q: multiple return values are not supported", fd.Name)}
	}

	params := make([]ir.VarDecl, len(fd.Params))
	for i, name := range fd.Params {
		params[i] = ir.VarDecl{ID: ir.IdentifierID(i), Name: name, Type: st.word}
	}
	retTy := st.voidTy
	if len(fd.Returns) == 1 {
		retTy = st.word
	}

	b.BuildFunction(fd.Name, params, retTy, isExternal)

	fc := &funcCtx{st: st, b: b, vars: map[string]ir.IdentifierID{}}
	for _, p := range params {
		fc.vars[p.Name] = p.ID
	}
	if len(fd.Returns) == 1 {
		id := fc.declareVar(fd.Returns[0])
		zero := wordLiteral(big.NewInt(0))
		fc.b.BuildDeclaration(id, &zero, st.word)
		fc.hasRet = true
		fc.retVar = id
	}

	if err := fc.lowerStmts(fd.Body.Stmts); err != nil {
		return err
	}
	fc.closeBlock()
	b.FuncEnd()
	return nil
}

// declareVar allocates a fresh SIR identifier for a Yul-level name, shadowing
// any earlier binding under the same name (flat function scope, see funcCtx).
func (fc *funcCtx) declareVar(name string) ir.IdentifierID {
	id := fc.b.CreateIdentifier(fc.st.word).AsIdentifier()
	fc.vars[name] = id
	return id
}

// newTemp allocates a word-typed identifier not tied to any surface name,
// for lowering-internal intermediates (memory words, accumulators).
func (fc *funcCtx) newTemp(ty *ir.Type) ir.IdentifierID {
	return fc.b.CreateIdentifier(ty).AsIdentifier()
}

// materialize declares a fresh temp initialized to e, so that later
// references reread the same computed value instead of re-running whatever
// side-effecting instruction e may nest.
func (fc *funcCtx) materialize(e ir.Expr, ty *ir.Type) ir.Expr {
	id := fc.newTemp(ty)
	fc.b.BuildDeclaration(id, &e, ty)
	return ir.Identifier(id)
}

// closeBlock appends a fallthrough terminator to whatever block the cursor
// currently sits on, if lowering left it without one. Used uniformly after
// a function body, an if/for/switch arm, and after opening a dead block
// following a break/continue/leave/terminating call — which is exactly what
// lets those "unreachable tail" blocks end up well-formed without special
// casing: whatever closes the enclosing scope closes them too.
func (fc *funcCtx) closeBlock() {
	cur := fc.b.CurrentBlock()
	if cur.Terminator() != nil {
		return
	}
	if fc.hasRet {
		rv := ir.Identifier(fc.retVar)
		fc.b.BuildRet(&rv)
	} else {
		fc.b.BuildRet(nil)
	}
}

// openDeadBlock repositions the cursor to a fresh block after an instruction
// that unconditionally leaves the current one (break, continue, leave,
// return/stop/revert). Statements lowered after such a call in the same Yul
// block are unreachable; they still need somewhere to land so later closing
// logic sees a well-formed CFG.
func (fc *funcCtx) openDeadBlock() {
	bb := fc.b.AppendBasicBlock()
	fc.b.PositionAtEnd(bb)
}

func (fc *funcCtx) lowerStmts(stmts []Stmt) error {
	for _, s := range stmts {
		if err := fc.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fc *funcCtx) lowerStmt(s Stmt) error {
	switch s := s.(type) {
	case *VarDeclStmt:
		if len(s.Names) != 1 {
			return &LoweringError{Msg: "multi-value let declarations are not supported"}
		}
		var init ir.Expr
		if s.Value != nil {
			v, err := fc.lowerExpr(s.Value)
			if err != nil {
				return err
			}
			init = v
		} else {
			init = wordLiteral(big.NewInt(0))
		}
		id := fc.declareVar(s.Names[0])
		fc.b.BuildDeclaration(id, &init, fc.st.word)
		return nil

	case *AssignStmt:
		if len(s.Names) != 1 {
			return &LoweringError{Msg: "multi-value assignments are not supported"}
		}
		v, err := fc.lowerExpr(s.Value)
		if err != nil {
			return err
		}
		id, ok := fc.vars[s.Names[0]]
		if !ok {
			return &LoweringError{Msg: fmt.Sprintf("assignment to undeclared variable %q", s.Names[0])}
		}
		fc.b.BuildAssignment(id, v)
		return nil

	case *ExprStmt:
		return fc.lowerExprStmt(s.Call)

	case *IfStmt:
		return fc.lowerIf(s)

	case *ForStmt:
		return fc.lowerFor(s)

	case *SwitchStmt:
		return fc.lowerSwitch(s)

	case *BlockStmt:
		return fc.lowerStmts(s.Body.Stmts)

	case *BreakStmt:
		target, ok := fc.b.BreakTarget()
		if !ok {
			return &LoweringError{Msg: "break outside a for loop"}
		}
		bb, _ := fc.b.CurrentFunction().CFG.GetBlock(target)
		fc.b.BuildBr(bb)
		fc.openDeadBlock()
		return nil

	case *ContinueStmt:
		target, ok := fc.b.ContinueTarget()
		if !ok {
			return &LoweringError{Msg: "continue outside a for loop"}
		}
		bb, _ := fc.b.CurrentFunction().CFG.GetBlock(target)
		fc.b.BuildBr(bb)
		fc.openDeadBlock()
		return nil

	case *LeaveStmt:
		fc.closeBlock()
		fc.openDeadBlock()
		return nil

	case *FunctionDefStmt:
		return &LoweringError{Msg: fmt.Sprintf("function %q: nested function definitions are not supported", s.Name)}
	}
	return fmt.Errorf("yul: unhandled statement %T", s)
}

func (fc *funcCtx) lowerIf(s *IfStmt) error {
	cond, err := fc.lowerExpr(s.Cond)
	if err != nil {
		return err
	}
	condBool := fc.wordTruthy(cond)

	thenBB := fc.b.AppendBasicBlock()
	mergeBB := fc.b.AppendBasicBlock()
	fc.b.BuildCondBr(condBool, thenBB, mergeBB)

	fc.b.PositionAtEnd(thenBB)
	if err := fc.lowerStmts(s.Body.Stmts); err != nil {
		return err
	}
	if fc.b.CurrentBlock().Terminator() == nil {
		fc.b.BuildBr(mergeBB)
	}

	fc.b.PositionAtEnd(mergeBB)
	return nil
}

func (fc *funcCtx) lowerFor(s *ForStmt) error {
	if err := fc.lowerStmts(s.Init.Stmts); err != nil {
		return err
	}

	condBB := fc.b.AppendBasicBlock()
	bodyBB := fc.b.AppendBasicBlock()
	postBB := fc.b.AppendBasicBlock()
	exitBB := fc.b.AppendBasicBlock()

	fc.b.BuildBr(condBB)

	fc.b.PositionAtEnd(condBB)
	cond, err := fc.lowerExpr(s.Cond)
	if err != nil {
		return err
	}
	condBool := fc.wordTruthy(cond)
	fc.b.BuildCondBr(condBool, bodyBB, exitBB)

	fc.b.PositionAtEnd(bodyBB)
	fc.b.PushLabel(exitBB.ID, postBB.ID)
	err = fc.lowerStmts(s.Body.Stmts)
	fc.b.PopLabel()
	if err != nil {
		return err
	}
	if fc.b.CurrentBlock().Terminator() == nil {
		fc.b.BuildBr(postBB)
	}

	fc.b.PositionAtEnd(postBB)
	if err := fc.lowerStmts(s.Post.Stmts); err != nil {
		return err
	}
	if fc.b.CurrentBlock().Terminator() == nil {
		fc.b.BuildBr(condBB)
	}

	fc.b.PositionAtEnd(exitBB)
	return nil
}

// lowerSwitch desugars into nested conditional branches, one per case, value
// equality checked against the scrutinee in source order; the innermost else
// holds the default body (or is empty, falling straight to the merge block).
func (fc *funcCtx) lowerSwitch(s *SwitchStmt) error {
	scrut, err := fc.lowerExpr(s.Expr)
	if err != nil {
		return err
	}
	scrutExpr := fc.materialize(scrut, fc.st.word)
	scrutID := scrutExpr.AsIdentifier()

	mergeBB := fc.b.AppendBasicBlock()

	for _, c := range s.Cases {
		w, err := decodeLiteralWord(&c.Value)
		if err != nil {
			return err
		}
		eq := ir.InstrExpr(ir.NewCmp(ir.CmpEq, ir.Identifier(scrutID), wordLiteral(w)))
		thenBB := fc.b.AppendBasicBlock()
		elseBB := fc.b.AppendBasicBlock()
		fc.b.BuildCondBr(eq, thenBB, elseBB)

		fc.b.PositionAtEnd(thenBB)
		if err := fc.lowerStmts(c.Body.Stmts); err != nil {
			return err
		}
		if fc.b.CurrentBlock().Terminator() == nil {
			fc.b.BuildBr(mergeBB)
		}

		fc.b.PositionAtEnd(elseBB)
	}

	if s.Default != nil {
		if err := fc.lowerStmts(s.Default.Stmts); err != nil {
			return err
		}
	}
	if fc.b.CurrentBlock().Terminator() == nil {
		fc.b.BuildBr(mergeBB)
	}

	fc.b.PositionAtEnd(mergeBB)
	return nil
}

// wordTruthy converts a word value to a bool expression (nonzero test), the
// form BuildCondBr requires.
func (fc *funcCtx) wordTruthy(e ir.Expr) ir.Expr {
	return ir.InstrExpr(ir.NewCmp(ir.CmpNe, e, wordLiteral(big.NewInt(0))))
}

// boolToWord is the inverse: SIR has no bool-to-int cast, so a comparison's
// bool result is reified into a word 0/1 via an explicit branch.
func (fc *funcCtx) boolToWord(cond ir.Expr) ir.Expr {
	thenBB := fc.b.AppendBasicBlock()
	elseBB := fc.b.AppendBasicBlock()
	mergeBB := fc.b.AppendBasicBlock()

	resID := fc.newTemp(fc.st.word)
	fc.b.BuildCondBr(cond, thenBB, elseBB)

	fc.b.PositionAtEnd(thenBB)
	one := wordLiteral(big.NewInt(1))
	fc.b.BuildDeclaration(resID, &one, fc.st.word)
	fc.b.BuildBr(mergeBB)

	fc.b.PositionAtEnd(elseBB)
	zero := wordLiteral(big.NewInt(0))
	fc.b.BuildDeclaration(resID, &zero, fc.st.word)
	fc.b.BuildBr(mergeBB)

	fc.b.PositionAtEnd(mergeBB)
	return ir.Identifier(resID)
}

func wordLiteral(v *big.Int) ir.Expr {
	return ir.LiteralExpr(ir.NewIntLiteral(v, ir.W256, false))
}

func decodeLiteralWord(lit *Literal) (*big.Int, error) {
	switch lit.Kind {
	case LitDecimal:
		v, ok := new(big.Int).SetString(lit.Text, 10)
		if !ok {
			return nil, &LoweringError{Msg: fmt.Sprintf("invalid decimal literal %q", lit.Text)}
		}
		return v, nil
	case LitHex:
		text := lit.Text
		if len(text) >= 2 && (text[1] == 'x' || text[1] == 'X') {
			text = text[2:]
		}
		v, ok := new(big.Int).SetString(text, 16)
		if !ok {
			return nil, &LoweringError{Msg: fmt.Sprintf("invalid hex literal %q", lit.Text)}
		}
		return v, nil
	case LitString:
		b := []byte(lit.Text)
		if len(b) > 32 {
			return nil, &LoweringError{Msg: fmt.Sprintf("string literal %q exceeds 32 bytes", lit.Text)}
		}
		padded := make([]byte, 32)
		copy(padded, b) // right-padded with zeros, matching Yul's string-literal-to-word rule
		return new(big.Int).SetBytes(padded), nil
	case LitBool:
		if lit.Bool {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	}
	return nil, &LoweringError{Msg: "unknown literal kind"}
}

func (fc *funcCtx) lowerExpr(e Expr) (ir.Expr, error) {
	switch e := e.(type) {
	case *Identifier:
		id, ok := fc.vars[e.Name]
		if !ok {
			return ir.Expr{}, &LoweringError{Msg: fmt.Sprintf("undefined identifier %q", e.Name)}
		}
		return ir.Identifier(id), nil
	case *Literal:
		w, err := decodeLiteralWord(e)
		if err != nil {
			return ir.Expr{}, err
		}
		return wordLiteral(w), nil
	case *FunctionCall:
		return fc.lowerCall(e)
	}
	return ir.Expr{}, fmt.Errorf("yul: unhandled expression %T", e)
}

// lowerExprStmt lowers a bare call statement. stop/return/revert/invalid
// leave the current function rather than yielding a value, so they're
// dispatched before the general expression path.
func (fc *funcCtx) lowerExprStmt(call *FunctionCall) error {
	switch call.Name {
	case "stop":
		fc.closeBlock()
		fc.openDeadBlock()
		return nil
	case "return":
		if _, _, err := fc.memRange(call.Args); err != nil {
			return err
		}
		fc.closeBlock()
		fc.openDeadBlock()
		return nil
	case "revert":
		if _, _, err := fc.memRange(call.Args); err != nil {
			return err
		}
		msg := ir.LiteralExpr(ir.NewStrLiteral("reverted"))
		code := ir.LiteralExpr(ir.NewUintLiteralU64(0, ir.W32))
		fc.b.BuildCall(ir.FuncName{Kind: ir.FuncHostAPI, Name: "revert"}, []ir.Expr{code, msg}, fc.st.voidTy)
		fc.closeBlock()
		fc.openDeadBlock()
		return nil
	case "invalid":
		msg := ir.LiteralExpr(ir.NewStrLiteral("invalid instruction"))
		fc.b.BuildCall(ir.FuncName{Kind: ir.FuncHostAPI, Name: "abort"}, []ir.Expr{msg}, fc.st.voidTy)
		fc.closeBlock()
		fc.openDeadBlock()
		return nil
	}
	_, err := fc.lowerCall(call)
	return err
}

// memRange validates a (offset, length) builtin argument pair against the
// compile-time-literal constraint this front-end imposes on memory access.
func (fc *funcCtx) memRange(args []Expr) (uint32, uint32, error) {
	if len(args) != 2 {
		return 0, 0, &LoweringError{Msg: "expected (offset, length) arguments"}
	}
	off, err := fc.constU32(args[0])
	if err != nil {
		return 0, 0, err
	}
	ln, err := fc.constU32(args[1])
	if err != nil {
		return 0, 0, err
	}
	return off, ln, nil
}

// constU32 requires e to be a literal, compile-time-known offset or length —
// the scope limitation this lowering imposes on memory/calldata addressing
// in exchange for SIR's static GetField/SetField path (see package doc).
func (fc *funcCtx) constU32(e Expr) (uint32, error) {
	lit, ok := e.(*Literal)
	if !ok {
		return 0, &LoweringError{Msg: "memory offsets and lengths must be compile-time integer literals"}
	}
	w, err := decodeLiteralWord(lit)
	if err != nil {
		return 0, err
	}
	if !w.IsUint64() || w.Uint64() > 0xFFFFFFFF {
		return 0, &LoweringError{Msg: "memory offset exceeds the supported range"}
	}
	return uint32(w.Uint64()), nil
}

func (fc *funcCtx) memPointer() ir.Expr {
	if !fc.memAllocated {
		arrTy := fc.st.ctx.Types.Array(fc.st.u8, u32Ptr(memSize))
		alloca := ir.InstrExpr(ir.NewAlloca(arrTy))
		id := fc.newTemp(arrTy)
		fc.b.BuildDeclaration(id, &alloca, arrTy)
		fc.memID = id
		fc.memAllocated = true
	}
	return ir.Identifier(fc.memID)
}

func u32Ptr(v uint32) *uint32 { return &v }

// lowerMstore unrolls a 32-byte big-endian word write into the memory arena,
// one GetField-free SetField per byte: P8's store/load round trip holds
// because mload walks the same byte indexing back in lowerMload.
func (fc *funcCtx) lowerMstore(off uint32, val ir.Expr, width int) error {
	v := fc.materialize(val, fc.st.word)
	mem := fc.memPointer()
	for i := 0; i < width; i++ {
		shiftAmt := uint((width - 1 - i) * 8)
		shifted := ir.InstrExpr(ir.NewBinary(ir.OpShr, v, wordLiteral(big.NewInt(int64(shiftAmt)))))
		masked := ir.InstrExpr(ir.NewBinary(ir.OpBitAnd, shifted, wordLiteral(big.NewInt(0xff))))
		byteVal := ir.InstrExpr(ir.NewIntCast(masked, fc.st.u8))
		fc.b.BuildSetField(mem, []uint32{off + uint32(i)}, byteVal)
	}
	return nil
}

func (fc *funcCtx) lowerMload(off uint32) ir.Expr {
	mem := fc.memPointer()
	accID := fc.newTemp(fc.st.word)
	zero := wordLiteral(big.NewInt(0))
	fc.b.BuildDeclaration(accID, &zero, fc.st.word)
	for i := 0; i < 32; i++ {
		get := ir.InstrExpr(ir.NewGetField(mem, []uint32{off + uint32(i)}, fc.st.u8))
		extended := ir.InstrExpr(ir.NewIntCast(get, fc.st.word))
		shiftAmt := uint((31 - i) * 8)
		shifted := ir.InstrExpr(ir.NewBinary(ir.OpShl, extended, wordLiteral(big.NewInt(int64(shiftAmt)))))
		newAcc := ir.InstrExpr(ir.NewBinary(ir.OpBitOr, ir.Identifier(accID), shifted))
		fc.b.BuildAssignment(accID, newAcc)
	}
	return ir.Identifier(accID)
}

var unsupportedBuiltins = map[string]bool{
	"keccak256": true, "calldataload": true, "calldatasize": true, "calldatacopy": true,
	"codecopy": true, "extcodecopy": true, "extcodesize": true, "extcodehash": true,
	"returndatacopy": true, "returndatasize": true,
	"create": true, "create2": true, "call": true, "callcode": true,
	"delegatecall": true, "staticcall": true, "selfdestruct": true,
	"balance": true, "selfbalance": true, "address": true, "caller": true,
	"origin": true, "callvalue": true, "chainid": true, "basefee": true,
	"difficulty": true, "prevrandao": true, "coinbase": true, "gaslimit": true,
	"blockhash": true, "blockhash0": true, "linkersymbol": true, "memoryguard": true,
	"verbatim": true, "signextend": true, "datasize": true, "dataoffset": true,
	"datacopy": true,
}

// lowerCall dispatches a Yul call expression: an arithmetic/bitwise/memory/
// storage/context builtin, a logging builtin, or a user-defined function.
func (fc *funcCtx) lowerCall(call *FunctionCall) (ir.Expr, error) {
	if unsupportedBuiltins[call.Name] {
		return ir.Expr{}, unsupported(call.Name)
	}

	switch call.Name {
	case "add", "sub", "mul", "div", "mod", "exp", "and", "or", "xor", "shl", "shr":
		a, b, err := fc.lowerPair(call.Args)
		if err != nil {
			return ir.Expr{}, err
		}
		op := map[string]ir.BinaryOp{
			"add": ir.OpAdd, "sub": ir.OpSub, "mul": ir.OpMul, "div": ir.OpDiv, "mod": ir.OpMod,
			"exp": ir.OpExp, "and": ir.OpBitAnd, "or": ir.OpBitOr, "xor": ir.OpBitXor,
			"shl": ir.OpShl, "shr": ir.OpShr,
		}[call.Name]
		return ir.InstrExpr(ir.NewBinary(op, a, b)), nil

	case "sdiv", "smod":
		a, b, err := fc.lowerPair(call.Args)
		if err != nil {
			return ir.Expr{}, err
		}
		as := ir.InstrExpr(ir.NewIntCast(a, fc.signedWord()))
		bs := ir.InstrExpr(ir.NewIntCast(b, fc.signedWord()))
		op := ir.OpDiv
		if call.Name == "smod" {
			op = ir.OpMod
		}
		r := ir.InstrExpr(ir.NewBinary(op, as, bs))
		return ir.InstrExpr(ir.NewIntCast(r, fc.st.word)), nil

	case "sar":
		a, b, err := fc.lowerPair(call.Args)
		if err != nil {
			return ir.Expr{}, err
		}
		as := ir.InstrExpr(ir.NewIntCast(a, fc.signedWord()))
		r := ir.InstrExpr(ir.NewBinary(ir.OpSar, as, b))
		return ir.InstrExpr(ir.NewIntCast(r, fc.st.word)), nil

	case "not":
		x, err := fc.lowerOne(call.Args)
		if err != nil {
			return ir.Expr{}, err
		}
		return ir.InstrExpr(ir.NewBitNot(x)), nil

	case "iszero":
		x, err := fc.lowerOne(call.Args)
		if err != nil {
			return ir.Expr{}, err
		}
		cond := ir.InstrExpr(ir.NewCmp(ir.CmpEq, x, wordLiteral(big.NewInt(0))))
		return fc.boolToWord(cond), nil

	case "eq", "lt", "gt":
		a, b, err := fc.lowerPair(call.Args)
		if err != nil {
			return ir.Expr{}, err
		}
		op := map[string]ir.CmpOp{"eq": ir.CmpEq, "lt": ir.CmpLt, "gt": ir.CmpGt}[call.Name]
		cond := ir.InstrExpr(ir.NewCmp(op, a, b))
		return fc.boolToWord(cond), nil

	case "slt", "sgt":
		a, b, err := fc.lowerPair(call.Args)
		if err != nil {
			return ir.Expr{}, err
		}
		as := ir.InstrExpr(ir.NewIntCast(a, fc.signedWord()))
		bs := ir.InstrExpr(ir.NewIntCast(b, fc.signedWord()))
		op := ir.CmpLt
		if call.Name == "sgt" {
			op = ir.CmpGt
		}
		cond := ir.InstrExpr(ir.NewCmp(op, as, bs))
		return fc.boolToWord(cond), nil

	case "byte":
		n, x, err := fc.lowerPair(call.Args)
		if err != nil {
			return ir.Expr{}, err
		}
		shiftAmt := ir.InstrExpr(ir.NewBinary(ir.OpMul, ir.InstrExpr(ir.NewBinary(ir.OpSub, wordLiteral(big.NewInt(31)), n)), wordLiteral(big.NewInt(8))))
		shifted := ir.InstrExpr(ir.NewBinary(ir.OpShr, x, shiftAmt))
		return ir.InstrExpr(ir.NewBinary(ir.OpBitAnd, shifted, wordLiteral(big.NewInt(0xff)))), nil

	case "addmod", "mulmod":
		if len(call.Args) != 3 {
			return ir.Expr{}, &LoweringError{Msg: fmt.Sprintf("%s expects 3 arguments", call.Name)}
		}
		x, err := fc.lowerExpr(call.Args[0])
		if err != nil {
			return ir.Expr{}, err
		}
		y, err := fc.lowerExpr(call.Args[1])
		if err != nil {
			return ir.Expr{}, err
		}
		m, err := fc.lowerExpr(call.Args[2])
		if err != nil {
			return ir.Expr{}, err
		}
		op := ir.OpAdd
		if call.Name == "mulmod" {
			op = ir.OpMul
		}
		sum := ir.InstrExpr(ir.NewBinary(op, x, y))
		return ir.InstrExpr(ir.NewBinary(ir.OpMod, sum, m)), nil

	case "pop":
		if len(call.Args) != 1 {
			return ir.Expr{}, &LoweringError{Msg: "pop expects 1 argument"}
		}
		v, err := fc.lowerExpr(call.Args[0])
		if err != nil {
			return ir.Expr{}, err
		}
		fc.materialize(v, fc.st.word)
		return ir.Nop(), nil

	case "mstore":
		off, err := fc.constU32(call.Args[0])
		if err != nil {
			return ir.Expr{}, err
		}
		val, err := fc.lowerExpr(call.Args[1])
		if err != nil {
			return ir.Expr{}, err
		}
		if err := fc.lowerMstore(off, val, 32); err != nil {
			return ir.Expr{}, err
		}
		return ir.Nop(), nil

	case "mstore8":
		off, err := fc.constU32(call.Args[0])
		if err != nil {
			return ir.Expr{}, err
		}
		val, err := fc.lowerExpr(call.Args[1])
		if err != nil {
			return ir.Expr{}, err
		}
		if err := fc.lowerMstore(off, val, 1); err != nil {
			return ir.Expr{}, err
		}
		return ir.Nop(), nil

	case "mload":
		off, err := fc.constU32(call.Args[0])
		if err != nil {
			return ir.Expr{}, err
		}
		return fc.lowerMload(off), nil

	case "sload":
		p, err := fc.lowerOne(call.Args)
		if err != nil {
			return ir.Expr{}, err
		}
		path := ir.InstrExpr(ir.NewGetStoragePath([]ir.Expr{p}))
		return ir.InstrExpr(ir.NewStorageLoad(path, fc.st.word)), nil

	case "sstore":
		if len(call.Args) != 2 {
			return ir.Expr{}, &LoweringError{Msg: "sstore expects 2 arguments"}
		}
		p, err := fc.lowerExpr(call.Args[0])
		if err != nil {
			return ir.Expr{}, err
		}
		v, err := fc.lowerExpr(call.Args[1])
		if err != nil {
			return ir.Expr{}, err
		}
		path := ir.InstrExpr(ir.NewGetStoragePath([]ir.Expr{p}))
		fc.b.BuildStorageStore(path, v)
		return ir.Nop(), nil

	case "number":
		return fc.hostWordCall("get_block_number", ir.U64)
	case "timestamp":
		return fc.hostWordCall("get_block_timestamp", ir.U64)
	case "gas":
		return fc.hostWordCall("get_call_gas_left", ir.U64)

	case "log0", "log1", "log2", "log3", "log4":
		for _, a := range call.Args {
			v, err := fc.lowerExpr(a)
			if err != nil {
				return ir.Expr{}, err
			}
			fc.materialize(v, fc.st.word)
		}
		msg := ir.LiteralExpr(ir.NewStrLiteral(call.Name))
		fc.b.BuildCall(ir.FuncName{Kind: ir.FuncHostAPI, Name: "log"}, []ir.Expr{msg}, fc.st.voidTy)
		return ir.Nop(), nil
	}

	arity, ok := fc.st.retArity[call.Name]
	if !ok {
		return ir.Expr{}, &LoweringError{Msg: fmt.Sprintf("call to undefined function %q", call.Name)}
	}
	args := make([]ir.Expr, len(call.Args))
	for i, a := range call.Args {
		v, err := fc.lowerExpr(a)
		if err != nil {
			return ir.Expr{}, err
		}
		args[i] = v
	}
	retTy := fc.st.voidTy
	if arity == 1 {
		retTy = fc.st.word
	}
	return ir.InstrExpr(ir.NewCall(ir.FuncName{Kind: ir.FuncUser, Name: call.Name}, args, retTy)), nil
}

func (fc *funcCtx) lowerOne(args []Expr) (ir.Expr, error) {
	if len(args) != 1 {
		return ir.Expr{}, &LoweringError{Msg: "expected exactly 1 argument"}
	}
	return fc.lowerExpr(args[0])
}

func (fc *funcCtx) lowerPair(args []Expr) (ir.Expr, ir.Expr, error) {
	if len(args) != 2 {
		return ir.Expr{}, ir.Expr{}, &LoweringError{Msg: "expected exactly 2 arguments"}
	}
	a, err := fc.lowerExpr(args[0])
	if err != nil {
		return ir.Expr{}, ir.Expr{}, err
	}
	b, err := fc.lowerExpr(args[1])
	if err != nil {
		return ir.Expr{}, ir.Expr{}, err
	}
	return a, b, nil
}

func (fc *funcCtx) signedWord() *ir.Type { return fc.st.ctx.Types.Int(ir.I256) }

func (fc *funcCtx) hostWordCall(name string, width ir.IntWidth) (ir.Expr, error) {
	resultTy := fc.st.ctx.Types.Int(ir.IntType{Width: width, Signed: false})
	call := ir.InstrExpr(ir.NewCall(ir.FuncName{Kind: ir.FuncHostAPI, Name: name}, nil, resultTy))
	return ir.InstrExpr(ir.NewIntCast(call, fc.st.word)), nil
}
