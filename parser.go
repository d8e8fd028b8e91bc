// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import "strconv"

// Parse runs the single-pass parser/IR builder over toks, reporting
// non-fatal diagnostics to diags.
func Parse(toks []Token, diags *Diagnostics) *ParsedContext {
	ctx := &ParsedContext{tokens: toks, typ: KwVoid}

	for ctx.pos = 0; ctx.pos < len(toks); ctx.pos++ {
		ctx.dispatch(diags)
	}
	// End-of-stream finalization: run the state handler once more with a
	// synthesized empty token so any trailing pending run flushes.
	ctx.dispatch(diags)

	return ctx
}

func (ctx *ParsedContext) dispatch(diags *Diagnostics) {
	switch ctx.state {
	case parseNormal:
		ctx.normalParse(diags)
	case parseLabel:
		ctx.labelParse()
	case parseBFPP:
		ctx.bfppParse(diags)
	}
}

// normalParse handles instruction folding, bracket matching, address-of,
// and the @/!/? meta-directive dispatch.
func (ctx *ParsedContext) normalParse(diags *Diagnostics) {
	tok := ctx.cur()

	switch tok.Type {
	case TAt:
		ctx.pushPendingInstruction()
		ctx.state = parseLabel
		return
	case TExclamation:
		if len(ctx.Labels) == 0 {
			diags.Warnf("Global returns are not permitted")
			return
		}
		ctx.pushPendingInstruction()
		ctx.Rets = append(ctx.Rets, FReturn{Pos: ctx.pos, Label: len(ctx.Labels) - 1})
		return
	case TQuestion:
		ctx.pushPendingInstruction()
		ctx.state = parseBFPP
		return
	case TCaret:
		ctx.pushPendingInstruction()
		if n := len(ctx.Ins); n > 0 {
			ctx.Ins[n-1].Address = true
		}
		return
	}

	if it := instructionTypeOf(tok); it != InsNone {
		ctx.parseInstruction(it, tok)
		return
	}
	ctx.pushPendingInstruction()
}

// parseInstruction folds consecutive identical operator tokens into one
// run. LOOP never folds across brackets: every bracket flushes any
// pending non-LOOP run and pushes/pops the open-loop stack exactly once.
func (ctx *ParsedContext) parseInstruction(it BFInstructionType, tok Token) {
	if it != ctx.curIns && it != InsLoop {
		ctx.pushPendingInstruction()
		ctx.curIns = it
		ctx.insCount++
		return
	}
	if it == InsLoop {
		if ctx.curIns != InsLoop {
			ctx.pushPendingInstruction()
		}
		ctx.curIns = InsLoop
		switch tok.Type {
		case TLSquare:
			ctx.openLoops = append(ctx.openLoops, Loop{Start: ctx.pos})
		case TRSquare:
			n := len(ctx.openLoops)
			back := ctx.openLoops[n-1]
			ctx.openLoops = ctx.openLoops[:n-1]
			ctx.DoneLoops = append(ctx.DoneLoops, Loop{Start: back.Start, End: ctx.pos})
		}
		return
	}
	ctx.insCount++
}

// bfppParse handles the token immediately after a `?`: width switches,
// `mov`, `extern`, and `call`. LookAhead-consuming directives advance the
// cursor past their operand so it is not re-parsed (invariant I4).
func (ctx *ParsedContext) bfppParse(diags *Diagnostics) {
	tok := ctx.cur()
	switch tok.Kwd {
	case KwNone:
		ctx.state = parseNormal
		return
	case KwI8, KwU8:
		ctx.Switches = append(ctx.Switches, WidthSwitch{To: WidthByte, Pos: ctx.pos})
	case KwI16, KwU16:
		ctx.Switches = append(ctx.Switches, WidthSwitch{To: WidthWord, Pos: ctx.pos})
	case KwI32, KwU32:
		ctx.Switches = append(ctx.Switches, WidthSwitch{To: WidthDword, Pos: ctx.pos})
	case KwI64, KwU64:
		ctx.Switches = append(ctx.Switches, WidthSwitch{To: WidthQword, Pos: ctx.pos})
	case KwMov:
		if ctx.lookableAhead() {
			operand := ctx.lookAhead()
			ctx.pos++
			switch operand.Type {
			case TDecimal:
				v, err := strconv.ParseInt(operand.Val, 10, 64)
				if err != nil {
					diags.Warnf("Unknown value on mov instruction on line %d", operand.Line)
				} else {
					ctx.Movs = append(ctx.Movs, MoveValue{Val: v, Pos: ctx.pos})
				}
			case THex:
				v, err := strconv.ParseInt(trimHexPrefix(operand.Val), 16, 64)
				if err != nil {
					diags.Warnf("Unknown value on mov instruction on line %d", operand.Line)
				} else {
					ctx.Movs = append(ctx.Movs, MoveValue{Val: v, Pos: ctx.pos})
				}
			default:
				diags.Warnf("Unknown value on mov instruction on line %d", operand.Line)
			}
		} else {
			diags.Warnf("Error on mov instruction, abruptly ended on line %d", tok.Line)
		}
	case KwExtern:
		if ctx.lookableAhead() {
			operand := ctx.lookAhead()
			ctx.pos++
			if operand.Type == TAlpha {
				ctx.Externs = append(ctx.Externs, operand.Val)
			} else {
				diags.Warnf("Unknown token on extern instruction on line %d", operand.Line)
			}
		} else {
			diags.Warnf("Error on extern instruction, abruptly ended on line %d", tok.Line)
		}
	case KwCall:
		if ctx.lookableAhead() {
			operand := ctx.lookAhead()
			ctx.pos++
			if operand.Type == TAlpha {
				ctx.Calls = append(ctx.Calls, Call{Pos: ctx.pos, Name: operand.Val})
			} else {
				diags.Warnf("Unknown token on call instruction on line %d", operand.Line)
			}
		} else {
			diags.Warnf("Error on call instruction, abruptly ended on line %d", tok.Line)
		}
	}
	ctx.state = parseNormal
}

// trimHexPrefix strips a leading "0x"/"0X" from a hex token's value; the
// tokenizer includes the "x" in the buffered text (see numberState).
func trimHexPrefix(s string) string {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// labelParse handles `@name` and, if followed by `:`, the `name: type`
// extended form. The label's type is taken from the type keyword itself
// (see SPEC_FULL.md §4, ambiguity (i)).
func (ctx *ParsedContext) labelParse() {
	if !ctx.special {
		if n := len(ctx.Labels); n > 0 {
			ctx.Labels[n-1].End = ctx.pos
		}
		ctx.Labels = append(ctx.Labels, Label{
			Name:  ctx.cur().Val,
			Start: ctx.pos,
			Type:  ctx.typ,
		})
		ctx.resetState()
		if ctx.lookableAhead() && ctx.lookAhead().Type == TColon {
			ctx.special = true
			ctx.state = parseLabel
		} else {
			ctx.state = parseNormal
		}
		return
	}

	if ctx.lookableAhead() {
		operand := ctx.lookAhead()
		if isTypeKeyword(operand.Kwd) {
			ctx.Labels[len(ctx.Labels)-1].Type = operand.Kwd
		}
		ctx.pos++
	}
	ctx.resetState()
}
