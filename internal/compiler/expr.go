package compiler

import (
	"math/big"

	"esprit/internal/ast"
	"esprit/internal/atom"
	"esprit/internal/value"
)

func (c *Compiler) compileExpression(n ast.Node) {
	switch e := n.(type) {
	case *ast.Literal:
		c.compileLiteral(e)
	case *ast.Identifier:
		c.block.emitAtom(OpGetBinding, e.Name)
	case *ast.ThisExpression:
		c.block.emit(OpThis)
	case *ast.TemplateLiteral:
		c.compileTemplateLiteral(e)
	case *ast.ArrayExpression:
		c.compileArrayExpression(e)
	case *ast.ObjectExpression:
		c.compileObjectExpression(e)
	case *ast.FunctionExpression:
		c.emitFunctionExpression(e.ID, e.Params, e.Body, e.IsGenerator, e.IsAsync, false)
	case *ast.ArrowFunctionExpression:
		c.compileArrowFunction(e)
	case *ast.ClassExpression:
		c.compileClassExpression(e)
	case *ast.UnaryExpression:
		c.compileUnary(e)
	case *ast.UpdateExpression:
		c.compileUpdate(e)
	case *ast.BinaryExpression:
		c.compileBinary(e)
	case *ast.LogicalExpression:
		c.compileLogical(e)
	case *ast.ConditionalExpression:
		c.compileConditional(e)
	case *ast.AssignmentExpression:
		c.compileAssignment(e)
	case *ast.SequenceExpression:
		for i, sub := range e.Expressions {
			if i > 0 {
				c.block.emit(OpPop)
			}
			c.compileExpression(sub)
		}
	case *ast.MemberExpression:
		c.compileMemberGet(e)
	case *ast.CallExpression:
		c.compileCall(e)
	case *ast.NewExpression:
		c.compileNew(e)
	case *ast.AwaitExpression:
		// OpAwait suspends the async frame; the VM resumes it from a
		// queued job with the settled value (see vm/coroutine.go).
		c.compileExpression(e.Argument)
		c.block.emit(OpAwait)
	case *ast.YieldExpression:
		if e.Argument != nil {
			c.compileExpression(e.Argument)
		} else {
			c.block.emit(OpUndefined)
		}
		c.block.emit(OpYield)
	case *ast.SpreadElement:
		c.compileExpression(e.Argument)
	case *ast.SuperExpression:
		// `super` compiles to the current `this` value. compileMemberGet
		// and compileCall have no separate path for it, so `super.m` looks
		// `m` up on `this` (and its prototype chain), not on the home
		// object's prototype. The parser rejects `super` outside methods.
		c.block.emit(OpThis)
	case *ast.MetaProperty:
		// `new.target`/`import.meta`: neither has a dedicated opcode in
		// this core (no derived-constructor new.target propagation, no
		// module import.meta object), so both read as undefined.
		c.block.emit(OpUndefined)
	case *ast.TaggedTemplateExpression:
		c.compileTaggedTemplate(e)
	default:
		c.fail(n.Span(), "compiler: unsupported expression node %T", n)
	}
}

func (c *Compiler) compileLiteral(e *ast.Literal) {
	switch e.Kind {
	case ast.LitNull:
		c.block.emit(OpNull)
	case ast.LitBool:
		if e.Bool {
			c.block.emit(OpTrue)
		} else {
			c.block.emit(OpFalse)
		}
	case ast.LitNumber:
		c.block.emitA(OpConst, c.block.AddConst(value.Number(e.Number)))
	case ast.LitString:
		c.block.emitA(OpConst, c.block.AddConst(value.String(e.String)))
	case ast.LitBigInt:
		// BigInt literal parsing to *big.Int happens here rather than in
		// the lexer/parser, which only carry the decimal text.
		c.block.emitA(OpConst, c.block.AddConst(bigIntFromText(e.BigIntText)))
	case ast.LitRegex:
		// No RegExp built-in exists in this core (out of scope); a regex
		// literal compiles to its source text so higher layers can at
		// least observe it was written.
		c.block.emitA(OpConst, c.block.AddConst(value.String("/"+e.RegexBody+"/"+e.RegexFlags)))
	default:
		c.block.emit(OpUndefined)
	}
}

func (c *Compiler) compileTemplateLiteral(e *ast.TemplateLiteral) {
	c.block.emitA(OpConst, c.block.AddConst(value.String(e.Quasis[0].Cooked)))
	for i, expr := range e.Expressions {
		c.compileExpression(expr)
		c.block.emitA(OpBinary, int(BinAdd)) // string coercion happens in the VM's + handler
		c.block.emitA(OpConst, c.block.AddConst(value.String(e.Quasis[i+1].Cooked)))
		c.block.emitA(OpBinary, int(BinAdd))
	}
}

// compileTaggedTemplate lowers tag`...` to a call of tag with a strings
// array (one entry per quasi) followed by the substitution expressions,
// approximating the real template-object-with-.raw argument without a
// dedicated frozen-array-with-raw-property runtime shape.
func (c *Compiler) compileTaggedTemplate(e *ast.TaggedTemplateExpression) {
	c.block.emit(OpUndefined) // this
	c.compileExpression(e.Tag)
	c.block.emit(OpNewArray)
	for _, q := range e.Quasi.Quasis {
		c.block.emitA(OpConst, c.block.AddConst(value.String(q.Cooked)))
		c.block.emit(OpPushElement)
	}
	for _, sub := range e.Quasi.Expressions {
		c.compileExpression(sub)
	}
	c.block.emitA(OpCall, 1+len(e.Quasi.Expressions))
}

func (c *Compiler) compileArrayExpression(e *ast.ArrayExpression) {
	c.block.emit(OpNewArray)
	for _, el := range e.Elements {
		if el == nil {
			c.block.emit(OpUndefined)
			c.block.emit(OpPushElement)
			continue
		}
		if spread, ok := el.(*ast.SpreadElement); ok {
			c.compileExpression(spread.Argument)
			c.block.emit(OpSpreadArray)
			continue
		}
		c.compileExpression(el)
		c.block.emit(OpPushElement)
	}
}

func (c *Compiler) compileObjectExpression(e *ast.ObjectExpression) {
	c.block.emit(OpNewObject)
	for _, p := range e.Properties {
		switch p.Kind {
		case "spread":
			c.compileExpression(p.Value)
			c.block.emit(OpSpreadArray) // VM treats object spread the same as array spread's source walk
			continue
		case "get", "set":
			if p.Computed {
				c.compileExpression(p.Key)
			} else {
				c.compilePropertyKeyLiteral(p.Key)
			}
			c.compileExpression(p.Value)
			idx := 0
			if p.Kind == "set" {
				idx = 1
			}
			c.block.emitA(OpDefineAccessor, idx)
			continue
		}
		if p.Computed {
			c.compileExpression(p.Key)
			c.compilePropertyValue(p.Value)
			c.block.emit(OpDefinePropVal)
			continue
		}
		name := c.propertyKeyAtom(p.Key)
		c.compilePropertyValue(p.Value)
		c.block.emitAtom(OpDefineProp, name)
	}
}

// compilePropertyValue compiles a property's value expression, unwrapping
// the shorthand-default AssignmentPattern cover grammar back to a plain
// value expression (only meaningful when this literal is later
// retargeted as a destructuring pattern; as a value it's just Default).
func (c *Compiler) compilePropertyValue(v ast.Node) {
	if ap, ok := v.(*ast.AssignmentPattern); ok {
		c.compileExpression(ap.Default)
		return
	}
	c.compileExpression(v)
}

func (c *Compiler) compilePropertyKeyLiteral(key ast.Node) {
	switch k := key.(type) {
	case *ast.Identifier:
		c.block.emitA(OpConst, c.block.AddConst(value.String(c.atoms.Resolve(k.Name))))
	case *ast.Literal:
		c.compileLiteral(k)
	default:
		c.compileExpression(key)
	}
}

// propertyKeyAtom resolves a non-computed property key node to the atom
// that should name it, interning literal keys (e.g. `{ "x": 1 }`, `{ 0:
// 1 }`) the same way an identifier key already is.
func (c *Compiler) propertyKeyAtom(key ast.Node) atom.Atom {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.PrivateIdentifier:
		return k.Name
	case *ast.Literal:
		switch k.Kind {
		case ast.LitString:
			return c.atoms.Intern(k.String)
		case ast.LitNumber:
			return c.atoms.Intern(value.NumberToString(k.Number))
		}
	}
	c.fail(key.Span(), "compiler: invalid property key")
	return atom.Invalid
}

func (c *Compiler) compileUnary(e *ast.UnaryExpression) {
	if e.Operator == "delete" {
		c.compileDelete(e.Argument)
		return
	}
	c.compileExpression(e.Argument)
	var op UnOp
	switch e.Operator {
	case "-":
		op = UnMinus
	case "+":
		op = UnPlus
	case "!":
		op = UnNot
	case "~":
		op = UnBitNot
	case "typeof":
		op = UnTypeof
	case "void":
		op = UnVoid
	}
	c.block.emitA(OpUnary, int(op))
}

func (c *Compiler) compileDelete(target ast.Node) {
	switch t := target.(type) {
	case *ast.MemberExpression:
		c.compileExpression(t.Object)
		if t.Computed {
			c.compileExpression(t.Property)
			c.block.emit(OpDeletePropVal)
		} else {
			name := t.Property.(*ast.Identifier).Name
			c.block.emitAtom(OpDeleteProp, name)
		}
	default:
		c.block.emit(OpTrue)
	}
}

// compileUpdate lowers ++/--. Prefix and postfix both read, increment,
// and store back the same reference; they differ only in which of the
// pre- or post-increment value survives as the expression's own result,
// so the two cases share the same read/store choreography and differ
// only in where the extra Dup is taken from.
func (c *Compiler) compileUpdate(e *ast.UpdateExpression) {
	delta := 1
	if e.Operator == "--" {
		delta = -1
	}
	switch t := e.Argument.(type) {
	case *ast.Identifier:
		c.block.emitAtom(OpGetBinding, t.Name) // [cur]
		if !e.Prefix {
			c.block.emit(OpDup) // [cur, cur]
		}
		c.block.emitA(OpUpdate, delta) // [cur?, newVal] (postfix keeps cur below)
		if e.Prefix {
			c.block.emit(OpDup) // [newVal, newVal]
		}
		c.block.emitAtom(OpSetBinding, t.Name) // pops top, stores; leaves the kept value
	case *ast.MemberExpression:
		c.compileExpression(t.Object) // [obj]
		c.block.emit(OpDup)           // [obj, obj]
		if t.Computed {
			c.compileExpression(t.Property) // [obj, obj, key]
			c.block.emit(OpDup)             // [obj, obj, key, key]
			c.block.emitA(OpRotTop, 3)      // [obj, key, obj, key]
			c.block.emit(OpGetPropValue)    // [objSet, keySet, cur]
			if !e.Prefix {
				c.block.emit(OpDup)        // [objSet, keySet, cur, cur]
				c.block.emitA(OpRotTop, 4) // [cur, objSet, keySet, cur]
			}
			c.block.emitA(OpUpdate, delta) // [..., newVal]
			if e.Prefix {
				c.block.emit(OpDup)        // [objSet, keySet, newVal, newVal]
				c.block.emitA(OpRotTop, 4) // [newVal, objSet, keySet, newVal]
			}
			c.block.emit(OpSetPropValue) // pops value, key, object; leaves the kept value
		} else {
			name := t.Property.(*ast.Identifier).Name
			c.block.emitAtom(OpGetProp, name) // [objSet, cur]
			if !e.Prefix {
				c.block.emit(OpDup)        // [objSet, cur, cur]
				c.block.emitA(OpRotTop, 3) // [cur, objSet, cur]
			}
			c.block.emitA(OpUpdate, delta) // [..., newVal]
			if e.Prefix {
				c.block.emit(OpDup)        // [objSet, newVal, newVal]
				c.block.emitA(OpRotTop, 3) // [newVal, objSet, newVal]
			}
			c.block.emitAtom(OpSetProp, name) // pops value, object; leaves the kept value
		}
	default:
		c.fail(e.Span(), "compiler: invalid update-expression target")
	}
}

// compileReference loads the current value of a simple (identifier or
// member) reference, invokes emitOp to replace the top of the stack with
// a new value derived from it (net-zero stack effect), then stores that
// new value back to the same reference, leaving it as the expression's
// result. Used by compound assignment (`+=` and friends), where the new
// value is always the result regardless of the operator.
func (c *Compiler) compileReference(target ast.Node, emitOp func()) {
	switch t := target.(type) {
	case *ast.Identifier:
		c.block.emitAtom(OpGetBinding, t.Name) // [cur]
		emitOp()                               // [newVal]
		c.block.emit(OpDup)                    // [newVal, newVal]
		c.block.emitAtom(OpSetBinding, t.Name)  // pops top, stores; leaves [newVal]
	case *ast.MemberExpression:
		c.compileExpression(t.Object) // [obj]
		c.block.emit(OpDup)           // [obj, obj]
		if t.Computed {
			c.compileExpression(t.Property) // [obj, obj, key]
			c.block.emit(OpDup)             // [obj, obj, key, key]
			c.block.emitA(OpRotTop, 3)      // [obj, key, obj, key]
			c.block.emit(OpGetPropValue)    // [objSet, keySet, cur]
			emitOp()                        // [objSet, keySet, newVal]
			c.block.emit(OpDup)             // [objSet, keySet, newVal, newVal]
			c.block.emitA(OpRotTop, 4)      // [newVal, objSet, keySet, newVal]
			c.block.emit(OpSetPropValue)    // leaves [newVal]
		} else {
			name := t.Property.(*ast.Identifier).Name
			c.block.emitAtom(OpGetProp, name) // [obj, cur]
			emitOp()                          // [obj, newVal]
			c.block.emit(OpDup)               // [obj, newVal, newVal]
			c.block.emitA(OpRotTop, 3)         // [newVal, obj, newVal]
			c.block.emitAtom(OpSetProp, name)  // leaves [newVal]
		}
	default:
		c.fail(target.Span(), "compiler: invalid reference for update/compound-assign")
	}
}

func (c *Compiler) compileBinary(e *ast.BinaryExpression) {
	c.compileExpression(e.Left)
	c.compileExpression(e.Right)
	c.block.emitA(OpBinary, int(binOpFor(e.Operator)))
}

func binOpFor(op string) BinOp {
	switch op {
	case "+":
		return BinAdd
	case "-":
		return BinSub
	case "*":
		return BinMul
	case "/":
		return BinDiv
	case "%":
		return BinMod
	case "**":
		return BinExp
	case "&":
		return BinBitAnd
	case "|":
		return BinBitOr
	case "^":
		return BinBitXor
	case "<<":
		return BinShl
	case ">>":
		return BinShr
	case ">>>":
		return BinUShr
	case "<":
		return BinLt
	case "<=":
		return BinLe
	case ">":
		return BinGt
	case ">=":
		return BinGe
	case "==":
		return BinEq
	case "!=":
		return BinNeq
	case "===":
		return BinStrictEq
	case "!==":
		return BinStrictNeq
	case "in":
		return BinIn
	case "instanceof":
		return BinInstanceof
	default:
		return BinAdd
	}
}

func (c *Compiler) compileLogical(e *ast.LogicalExpression) {
	c.compileExpression(e.Left)
	c.block.emit(OpDup)
	var jmp int
	switch e.Operator {
	case "&&":
		jmp = c.block.emit(OpJumpIfFalse)
	case "||":
		jmp = c.block.emit(OpJumpIfTrue)
	default: // "??"
		jmp = c.block.emit(OpJumpIfNotNullish)
	}
	c.block.emit(OpPop)
	c.compileExpression(e.Right)
	c.block.patchJump(jmp)
}

func (c *Compiler) compileConditional(e *ast.ConditionalExpression) {
	c.compileExpression(e.Test)
	jf := c.block.emit(OpJumpIfFalse)
	c.compileExpression(e.Consequent)
	jend := c.block.emit(OpJump)
	c.block.patchJump(jf)
	c.compileExpression(e.Alternate)
	c.block.patchJump(jend)
}

func (c *Compiler) compileMemberGet(e *ast.MemberExpression) {
	c.compileExpression(e.Object)
	if e.Computed {
		c.compileExpression(e.Property)
		c.block.emit(OpGetPropValue)
		return
	}
	name := e.Property.(*ast.Identifier).Name
	c.block.emitAtom(OpGetProp, name)
}

func (c *Compiler) compileCall(e *ast.CallExpression) {
	// A member callee needs its object preserved as `this`; compile the
	// object once, dup it for the property get, leaving [this, fn] for
	// OpCall to consume alongside the arguments.
	if member, ok := e.Callee.(*ast.MemberExpression); ok {
		c.compileExpression(member.Object)
		c.block.emit(OpDup)
		if member.Computed {
			c.compileExpression(member.Property)
			c.block.emit(OpGetPropValue)
		} else {
			c.block.emitAtom(OpGetProp, member.Property.(*ast.Identifier).Name)
		}
	} else {
		c.block.emit(OpUndefined) // this
		c.compileExpression(e.Callee)
	}
	if hasSpreadArg(e.Args) {
		c.compileSpreadArguments(e.Args)
		c.block.emit(OpCallSpread)
	} else {
		c.compileArguments(e.Args)
		c.block.emitA(OpCall, len(e.Args))
	}
}

// compileArguments pushes each argument in order as individual stack
// values. Only safe to call when none of args is a spread element — a
// call or new with a spread argument goes through
// compileSpreadArguments instead, since OpCall/OpNew's static argc
// operand can't describe a runtime-sized argument list.
func (c *Compiler) compileArguments(args []ast.Node) {
	for _, a := range args {
		c.compileExpression(a)
	}
}

// compileSpreadArguments builds a single argument array on the stack,
// the same way an array literal with spread elements does (OpNewArray
// plus OpPushElement/OpSpreadArray per element), so OpCallSpread/
// OpNewSpread can consume one value instead of a variable-length run of
// individual stack slots.
func (c *Compiler) compileSpreadArguments(args []ast.Node) {
	c.block.emit(OpNewArray)
	for _, a := range args {
		if spread, ok := a.(*ast.SpreadElement); ok {
			c.compileExpression(spread.Argument)
			c.block.emit(OpSpreadArray)
			continue
		}
		c.compileExpression(a)
		c.block.emit(OpPushElement)
	}
}

func hasSpreadArg(args []ast.Node) bool {
	for _, a := range args {
		if _, ok := a.(*ast.SpreadElement); ok {
			return true
		}
	}
	return false
}

func (c *Compiler) compileNew(e *ast.NewExpression) {
	c.compileExpression(e.Callee)
	if hasSpreadArg(e.Args) {
		c.compileSpreadArguments(e.Args)
		c.block.emit(OpNewSpread)
	} else {
		c.compileArguments(e.Args)
		c.block.emitA(OpNew, len(e.Args))
	}
}

func (c *Compiler) compileAssignment(e *ast.AssignmentExpression) {
	if e.Operator == "=" {
		c.compileExpression(e.Right)
		c.compileAssignTo(e.Left)
		return
	}
	if e.Operator == "&&=" || e.Operator == "||=" || e.Operator == "??=" {
		c.compileLogicalAssign(e)
		return
	}
	c.compileReference(e.Left, func() {
		c.compileExpression(e.Right)
		c.block.emitA(OpBinary, int(binOpFor(compoundBaseOp(e.Operator))))
	})
}

func compoundBaseOp(op string) string {
	return op[:len(op)-1]
}

func (c *Compiler) compileLogicalAssign(e *ast.AssignmentExpression) {
	switch ident := e.Left.(type) {
	case *ast.Identifier:
		c.block.emitAtom(OpGetBinding, ident.Name)
		jmp := c.logicalAssignJump(e.Operator)
		c.compileExpression(e.Right)
		c.block.emit(OpDup)
		c.block.emitAtom(OpSetBinding, ident.Name)
		c.block.patchJump(jmp)
	case *ast.MemberExpression:
		// The short-circuit path has to discard the object it evaluated
		// (never consumed by a OpSetProp, unlike the assign path), so it
		// gets its own landing rather than sharing logicalAssignJump's
		// generic single-value contract.
		c.compileExpression(ident.Object) // [obj]
		c.block.emit(OpDup)               // [obj, obj]
		name := ident.Property.(*ast.Identifier).Name
		c.block.emitAtom(OpGetProp, name) // [obj, cur]
		c.block.emit(OpDup)               // [obj, cur, cur]
		var shortJmp int
		switch e.Operator {
		case "&&=":
			shortJmp = c.block.emit(OpJumpIfFalse)
		case "||=":
			shortJmp = c.block.emit(OpJumpIfTrue)
		default: // ??=
			shortJmp = c.block.emit(OpJumpIfNotNullish)
		}
		c.block.emit(OpPop)                // [obj, cur] -> [obj]
		c.compileExpression(e.Right)       // [obj, rhs]
		c.block.emit(OpDup)                // [obj, rhs, rhs]
		c.block.emitA(OpRotTop, 3)         // [rhs, obj, rhs]
		c.block.emitAtom(OpSetProp, name)  // leaves [rhs]
		mergeJmp := c.block.emit(OpJump)
		c.block.patchJump(shortJmp) // lands here with [obj, cur]
		c.block.emit(OpSwap)        // [cur, obj]
		c.block.emit(OpPop)         // [cur]
		c.block.patchJump(mergeJmp)
	default:
		c.fail(e.Span(), "compiler: invalid logical-assignment target")
	}
}

func (c *Compiler) logicalAssignJump(op string) int {
	c.block.emit(OpDup)
	switch op {
	case "&&=":
		j := c.block.emit(OpJumpIfFalse)
		c.block.emit(OpPop)
		return j
	case "||=":
		j := c.block.emit(OpJumpIfTrue)
		c.block.emit(OpPop)
		return j
	default: // ??=
		j := c.block.emit(OpJumpIfNotNullish)
		c.block.emit(OpPop)
		return j
	}
}

// compileAssignTo stores the value already on top of the stack into a
// simple target, a member expression, or — for the common shallow cases
// — an array/object destructuring pattern.
func (c *Compiler) compileAssignTo(target ast.Node) {
	switch t := target.(type) {
	case *ast.Identifier:
		c.block.emit(OpDup)                    // [rhs, rhs]
		c.block.emitAtom(OpSetBinding, t.Name) // pops top, stores; leaves [rhs]
	case *ast.MemberExpression:
		// entry: [rhs]
		c.compileExpression(t.Object) // [rhs, obj]
		if t.Computed {
			c.compileExpression(t.Property) // [rhs, obj, key]
			c.block.emitA(OpRotTop, 3)      // [key, rhs, obj]
			c.block.emitA(OpRotTop, 3)      // [obj, key, rhs]
			c.block.emit(OpDup)             // [obj, key, rhs, rhs]
			c.block.emitA(OpRotTop, 4)      // [rhs, obj, key, rhs]
			c.block.emit(OpSetPropValue)    // pops value, key, object; leaves [rhs]
		} else {
			c.block.emit(OpSwap)              // [obj, rhs]
			c.block.emit(OpDup)               // [obj, rhs, rhs]
			c.block.emitA(OpRotTop, 3)         // [rhs, obj, rhs]
			c.block.emitAtom(OpSetProp, t.Property.(*ast.Identifier).Name) // leaves [rhs]
		}
	default:
		c.compileDestructureAssign(target)
	}
}

// compileDestructureAssign stores the value on top of the stack into an
// array or object destructuring target, used both by `[a, b] = x` style
// assignment expressions and (via the same code, applied per-element) by
// binding-pattern initializers for let/const/var/parameters.
func (c *Compiler) compileDestructureAssign(target ast.Node) {
	switch t := target.(type) {
	case *ast.ArrayPattern:
		c.compileArrayDestructure(t.Elements)
	case *ast.ObjectPattern:
		c.compileObjectDestructure(t.Properties)
	case *ast.AssignmentPattern:
		c.block.emit(OpDup)
		jmp := c.block.emit(OpJumpIfNullish)
		c.block.emit(OpJump)
		notNullish := c.block.here() - 1
		c.block.patchJump(jmp)
		c.block.emit(OpPop)
		c.compileExpression(t.Default)
		c.block.patchJumpTo(notNullish, c.block.here())
		c.compileAssignTo(t.Left)
	default:
		c.fail(target.Span(), "compiler: unsupported destructuring target %T", target)
	}
}

// compileArrayDestructure consumes an iterable value on top of the stack
// and assigns each binding target its successive element; arrays/strings
// are walked directly (no Symbol.iterator protocol — see DESIGN.md).
func (c *Compiler) compileArrayDestructure(elements []ast.Node) {
	for _, el := range elements {
		if rest, ok := el.(*ast.RestElement); ok {
			c.block.emit(OpGetIteratorItem) // drains the remainder into an array
			c.compileAssignTo(rest.Argument)
			c.block.emit(OpPop)
			return
		}
		// Unlike a for-of loop head, a destructuring target past the end
		// of the iterable gets `undefined`, not a jump out of anything —
		// so the exhaustion branch is patched to fall into a tiny
		// push-undefined stub rather than a loop exit.
		exhausted := c.block.emit(OpForOfNext)
		gotItem := c.block.emit(OpJump)
		c.block.patchJump(exhausted)
		c.block.emit(OpUndefined)
		c.block.patchJump(gotItem)
		if el == nil {
			c.block.emit(OpPop)
			continue
		}
		c.compileAssignTo(el)
		c.block.emit(OpPop)
	}
	c.block.emit(OpPop)
}

// compileObjectDestructure consumes an object value on top of the stack
// and assigns each named (or computed) property to its binding target.
func (c *Compiler) compileObjectDestructure(props []*ast.Property) {
	seen := map[atom.Atom]bool{}
	for _, p := range props {
		if rest, ok := p.Value.(*ast.RestElement); ok && p.Kind == "spread" {
			c.block.emit(OpNewObject)
			_ = seen
			c.compileAssignTo(rest.Argument)
			c.block.emit(OpPop)
			continue
		}
		c.block.emit(OpDup)
		if p.Computed {
			c.compileExpression(p.Key)
			c.block.emit(OpGetPropValue)
		} else {
			c.block.emitAtom(OpGetProp, c.propertyKeyAtom(p.Key))
		}
		c.compileAssignTo(p.Value)
		c.block.emit(OpPop)
	}
	c.block.emit(OpPop)
}

func bigIntFromText(text string) value.Value {
	n := new(big.Int)
	n.SetString(text, 0)
	return value.BigInt(n)
}
