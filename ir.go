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

// BFInstructionType is the set of folded bf++ IR opcodes.
type BFInstructionType uint8

const (
	InsNone BFInstructionType = iota
	InsLeft
	InsRight
	InsPlus
	InsMinus
	InsOutput
	InsArgument // *
	InsLoop     // [ or ]
	InsGetArg   // &
)

// BFInstruction is a single run-length-folded IR instruction.
type BFInstruction struct {
	Type    BFInstructionType
	Count   uint32
	Pos     int
	Address bool // set by a trailing ^
}

// Label partitions the token position space into named procedures.
type Label struct {
	Name          string
	Start         int
	End           int // 0 means "open to end of input"
	PointerLevel  uint16
	Type          Keyword
	ExtraAlloc    uint32
}

// WidthSwitch records a ?i8..?u64 cell-width change at a token position.
type WidthSwitch struct {
	To  Width
	Pos int
}

// Width is the current cell width in bytes.
type Width uint8

const (
	WidthByte  Width = 1
	WidthWord  Width = 2
	WidthDword Width = 4
	WidthQword Width = 8
)

// MoveValue records a ?mov immediate-store at its operand's position.
type MoveValue struct {
	Val int64
	Pos int
}

// FReturn records a ! early-return at its token position, pointing back at
// the enclosing label by index.
type FReturn struct {
	Pos   int
	Label int
}

// Call records a ?call at its operand's position.
type Call struct {
	Pos  int
	Name string
}

// Loop records a matched [ / ] pair. End == 0 means still open.
type Loop struct {
	Start, End int
}

// parsingState is the parser's three-state machine.
type parsingState uint8

const (
	parseNormal parsingState = iota
	parseLabel
	parseBFPP
)

// ParsedContext aggregates everything the parser discovers in one pass
// over the token stream, ready for the code generator to consume.
type ParsedContext struct {
	Labels     []Label
	Switches   []WidthSwitch
	Rets       []FReturn
	Calls      []Call
	Externs    []string
	DoneLoops  []Loop
	Ins        []BFInstruction
	Movs       []MoveValue

	openLoops []Loop

	tokens []Token
	pos    int

	state   parsingState
	typ     Keyword
	special bool
	ptrl    uint16

	curIns   BFInstructionType
	insCount uint32
}

// lookableAhead reports whether there is a token after the current one.
func (ctx *ParsedContext) lookableAhead() bool {
	return ctx.pos+1 < len(ctx.tokens)
}

// lookAhead returns the token immediately after the current one. Callers
// must check lookableAhead first.
func (ctx *ParsedContext) lookAhead() Token {
	return ctx.tokens[ctx.pos+1]
}

// cur returns the token at the parser's current position, or a zero Token
// once the cursor has run past the end (used for end-of-stream flushing).
func (ctx *ParsedContext) cur() Token {
	if ctx.pos < len(ctx.tokens) {
		return ctx.tokens[ctx.pos]
	}
	return Token{}
}

// resetState returns the parser to Normal with cleared label-accumulation
// fields, mirroring ResetContext in the reference.
func (ctx *ParsedContext) resetState() {
	ctx.state = parseNormal
	ctx.special = false
	ctx.typ = KwVoid
	ctx.curIns = InsNone
}

// pushPendingInstruction flushes the run currently being folded (if any)
// into Ins, keyed at ctx.pos-1 per invariant I4 (one behind the current
// cursor at flush time, i.e. the run's last token when the flush is
// triggered by the token right after the run).
func (ctx *ParsedContext) pushPendingInstruction() {
	if ctx.curIns != InsNone {
		ctx.Ins = append(ctx.Ins, BFInstruction{
			Type:  ctx.curIns,
			Count: ctx.insCount,
			Pos:   ctx.pos - 1,
		})
		ctx.curIns = InsNone
		ctx.insCount = 0
	}
}

// instructionTypeOf classifies a token into its folded IR type, or InsNone
// if the token isn't a bf++ operator.
func instructionTypeOf(tok Token) BFInstructionType {
	switch tok.Type {
	case TLShift:
		return InsLeft
	case TRShift:
		return InsRight
	case TPlus:
		return InsPlus
	case TMinus:
		return InsMinus
	case TDot:
		return InsOutput
	case TStar:
		return InsArgument
	case TLSquare, TRSquare:
		return InsLoop
	case TAmpersand:
		return InsGetArg
	default:
		return InsNone
	}
}
