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

import (
	"bufio"
	"fmt"
	"io"

	"github.com/samber/lo"
)

// sysWrite is the Linux x86-64 syscall number for write(2), used by the
// `.` output operator.
const sysWrite = 1

// stdoutFD is the file descriptor `.` writes to.
const stdoutFD = 1

// errWriter wraps a *bufio.Writer and remembers the first write error, so
// the generator's emission helpers can be written without an err check
// after every Fprintf. Generate() surfaces the remembered error at the end
// the same way the reference aborts codegen on file-open failure.
type errWriter struct {
	w   *bufio.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// Generator walks a ParsedContext's position space and emits AT&T GAS
// assembly, one event group per position, exactly as laid out in
// SPEC_FULL.md §4.3.
type Generator struct {
	ctx   *ParsedContext
	regs  *RegisterFile
	opts  CompileOptions
	diags *Diagnostics

	width Width
}

// NewGenerator builds a code generator for ctx using opts for frame
// layout. diags receives non-fatal diagnostics (stack-argument retrieval
// is not supported, etc).
func NewGenerator(ctx *ParsedContext, opts CompileOptions, diags *Diagnostics) *Generator {
	return &Generator{
		ctx:   ctx,
		regs:  NewRegisterFile(),
		opts:  opts,
		diags: diags,
		width: WidthByte,
	}
}

// Generate writes the full assembly listing for g.ctx to w.
func (g *Generator) Generate(w io.Writer) error {
	ew := &errWriter{w: bufio.NewWriter(w)}

	g.emitHeader(ew)

	var openLabel *Label
	lastPos := len(g.ctx.tokens)

	for i := 0; i < lastPos; i++ {
		g.emitLoopMarkers(ew, i)
		g.emitCalls(ew, i)
		g.emitMoves(ew, i)
		g.applyWidthSwitches(i)
		g.emitInstructions(ew, i)
		g.emitReturns(ew, i)
		g.emitLabelBoundaries(ew, i, &openLabel)
	}

	if openLabel != nil {
		g.emitLabelEnd(ew, *openLabel)
		g.emitEpilogue(ew, *openLabel)
	}

	if ew.err != nil {
		return fmt.Errorf("bfpp: codegen write failed: %w", ew.err)
	}
	return ew.w.Flush()
}

func (g *Generator) emitHeader(ew *errWriter) {
	ew.printf("\t.text\n")
	for _, lbl := range g.ctx.Labels {
		ew.printf("\t.globl %s\n", lbl.Name)
	}
	for _, name := range g.ctx.Externs {
		ew.printf("\t.extern %s\n", name)
	}
}

func (g *Generator) applyWidthSwitches(pos int) {
	for _, sw := range g.ctx.Switches {
		if sw.Pos == pos {
			g.width = sw.To
		}
	}
}

func (g *Generator) emitLoopMarkers(ew *errWriter, pos int) {
	for k, loop := range g.ctx.DoneLoops {
		switch pos {
		case loop.Start:
			ew.printf("__loop__start__%d:\n", k)
			ew.printf("\tcmp%s $0, (%%%s)\n", g.width.suffix(), g.regs.Frame.Name64)
			ew.printf("\tje __loop__end__%d\n", k)
		case loop.End:
			ew.printf("\tjmp __loop__start__%d\n", k)
			ew.printf("__loop__end__%d:\n", k)
		}
	}
}

func (g *Generator) emitCalls(ew *errWriter, pos int) {
	for _, call := range g.ctx.Calls {
		if call.Pos != pos {
			continue
		}
		g.regs.unsyncArgsAndReturn()
		ew.printf("\tcall %s\n", call.Name)
		ew.printf("\tmov%s %%%s, (%%%s)\n", g.width.suffix(), g.regs.RAX.widthName(g.width), g.regs.Frame.Name64)
	}
}

func (g *Generator) emitMoves(ew *errWriter, pos int) {
	for _, mv := range g.ctx.Movs {
		if mv.Pos == pos {
			ew.printf("\tmov%s $%d, (%%%s)\n", g.width.suffix(), mv.Val, g.regs.Frame.Name64)
		}
	}
}

func (g *Generator) emitReturns(ew *errWriter, pos int) {
	for _, ret := range g.ctx.Rets {
		if ret.Pos != pos {
			continue
		}
		lbl := g.ctx.Labels[ret.Label]
		if lbl.Type != KwVoid {
			g.regs.RAX.unsync()
			ew.printf("\tmov%s (%%%s), %%%s\n", g.width.suffix(), g.regs.Frame.Name64, g.regs.RAX.widthName(g.width))
		}
		ew.printf("\tjmp ")
		g.emitLabelEndName(ew, lbl)
		ew.printf("\n")
	}
}

func (g *Generator) emitLabelEndName(ew *errWriter, lbl Label) {
	ew.printf("__%s__end__%d", lbl.Name, lbl.Start)
}

func (g *Generator) emitLabelEnd(ew *errWriter, lbl Label) {
	g.emitLabelEndName(ew, lbl)
	ew.printf(":\n")
}

func (g *Generator) emitPrologue(ew *errWriter) {
	ew.printf("\tpushq %%%s\n", g.regs.Frame.Name64)
	ew.printf("\tmovq %%%s, %%%s\n", g.regs.Stack.Name64, g.regs.Frame.Name64)
	ew.printf("\tsubq $%d, %%%s\n", g.opts.Allocate, g.regs.Stack.Name64)
	if g.opts.BaseOffset > 0 {
		ew.printf("\tsubq $%d, %%%s\n", g.opts.BaseOffset, g.regs.Frame.Name64)
	}
}

func (g *Generator) emitEpilogue(ew *errWriter, lbl Label) {
	ew.printf("\taddq $%d, %%%s\n", uint64(g.opts.Allocate)+uint64(lbl.ExtraAlloc), g.regs.Stack.Name64)
	ew.printf("\tpopq %%%s\n", g.regs.Frame.Name64)
	ew.printf("\tret\n")
}

func (g *Generator) emitLabelBoundaries(ew *errWriter, pos int, openLabel **Label) {
	for i := range g.ctx.Labels {
		lbl := &g.ctx.Labels[i]
		if lbl.End != 0 && pos == lbl.End {
			g.emitLabelEnd(ew, *lbl)
			g.emitEpilogue(ew, *lbl)
			ew.printf("\n")
		}
		if pos == lbl.Start {
			ew.printf("\t.p2align 4\n")
			ew.printf("%s:\n", lbl.Name)
			g.emitPrologue(ew)
			ew.printf("\n")
			if lbl.End == 0 {
				*openLabel = lbl
			}
		}
	}
}

func (g *Generator) instructionComment(ins BFInstruction) string {
	var cc byte
	switch ins.Type {
	case InsLeft:
		cc = '<'
	case InsRight:
		cc = '>'
	case InsPlus:
		cc = '+'
	case InsMinus:
		cc = '-'
	case InsOutput:
		cc = '.'
	case InsArgument:
		cc = '*'
	case InsLoop:
		cc = '['
	case InsGetArg:
		cc = '&'
	default:
		cc = ' '
	}
	out := make([]byte, ins.Count)
	for i := range out {
		out[i] = cc
	}
	return string(out)
}

func (g *Generator) emitInstructions(ew *errWriter, pos int) {
	for _, ins := range g.ctx.Ins {
		if ins.Pos != pos {
			continue
		}
		switch ins.Type {
		case InsPlus:
			ew.printf("\tadd%s $%d, (%%%s)\n", g.width.suffix(), ins.Count, g.regs.Frame.Name64)
		case InsMinus:
			ew.printf("\tsub%s $%d, (%%%s)\n", g.width.suffix(), ins.Count, g.regs.Frame.Name64)
		case InsLeft:
			ew.printf("\taddq $%d, %%%s\n", int(ins.Count)*GetMultiplier(g.width), g.regs.Frame.Name64)
		case InsRight:
			ew.printf("\tsubq $%d, %%%s\n", int(ins.Count)*GetMultiplier(g.width), g.regs.Frame.Name64)
		case InsOutput:
			g.emitOutput(ew, ins.Count)
		case InsArgument:
			g.emitArgument(ew, ins)
		case InsGetArg:
			g.emitGetArg(ew, ins)
		}
		ew.printf("\t#\t%s\n", g.instructionComment(ins))
	}
}

// emitOutput emits count write(2) syscalls, each writing the single byte
// at the tape cursor to stdout. The %rax, %rdi and %rdx setup loads are
// elided via the sync peephole when already known; %rsi is always re-set
// since its value is an address, not a tracked constant.
func (g *Generator) emitOutput(ew *errWriter, count uint32) {
	for c := uint32(0); c < count; c++ {
		if !g.regs.RAX.Synced || g.regs.RAX.CachedValue != sysWrite {
			g.regs.RAX.Synced = true
			g.regs.RAX.CachedValue = sysWrite
			ew.printf("\tmovq $%d, %%%s\n", sysWrite, g.regs.RAX.Name64)
		}
		if !g.regs.RDI.Synced || g.regs.RDI.CachedValue != stdoutFD {
			g.regs.RDI.Synced = true
			g.regs.RDI.CachedValue = stdoutFD
			ew.printf("\tmovq $%d, %%%s\n", stdoutFD, g.regs.RDI.Name64)
		}
		ew.printf("\tmovq %%%s, %%%s\n", g.regs.Frame.Name64, g.regs.RSI.Name64)
		g.regs.RSI.Synced = true
		if !g.regs.RDX.Synced || g.regs.RDX.CachedValue != 1 {
			g.regs.RDX.Synced = true
			g.regs.RDX.CachedValue = 1
			ew.printf("\tmovq $1, %%%s\n", g.regs.RDX.Name64)
		}
		ew.printf("\tsyscall\n")
		g.regs.R11.unsync()
		g.regs.RCX.unsync()
	}
}

// emitArgument marshals a `*n` IR instruction: n in 1..6 move into the
// corresponding System V argument register, n >= 7 spill to the stack at
// offset (n-7)*8 above the current %rsp. Staging the (offset, instruction)
// pair in a lo.Tuple2 mirrors how the teacher's x86 register allocator
// collects register-overflow call arguments before emitting their stack
// slots.
func (g *Generator) emitArgument(ew *errWriter, ins BFInstruction) {
	if reg := g.regs.argRegister(ins.Count); reg != nil {
		reg.unsync()
		src := lo.Ternary(ins.Address, "%"+g.regs.Frame.Name64, fmt.Sprintf("(%%%s)", g.regs.Frame.Name64))
		ew.printf("\tmov%s %s, %%%s\n", g.width.suffix(), src, reg.widthName(g.width))
		return
	}

	offset := int(ins.Count-7) * 8
	slot := lo.Tuple2[int, *BFInstruction]{A: offset, B: &ins}
	g.emitStackArgument(ew, slot)
}

func (g *Generator) emitStackArgument(ew *errWriter, slot lo.Tuple2[int, *BFInstruction]) {
	offset, ins := slot.A, slot.B
	dest := "(%" + g.regs.Stack.Name64 + ")"
	if offset != 0 {
		dest = fmt.Sprintf("%d(%%%s)", offset, g.regs.Stack.Name64)
	}

	if ins.Address {
		ew.printf("\tmovq %%%s, %s\n", g.regs.Frame.Name64, dest)
		return
	}

	g.regs.RAX.unsync()
	ew.printf("\tmov%s (%%%s), %%%s\n", g.width.suffix(), g.regs.Frame.Name64, g.regs.RAX.widthName(g.width))
	ew.printf("\tmovq %%%s, %s\n", g.regs.RAX.Name64, dest)
}

// emitGetArg marshals a `&n` IR instruction: n in 1..6 move the argument
// register into the tape cursor (or into %rbp itself if address_flag); n
// >= 7 isn't supported and is reported to diags without emitting anything.
func (g *Generator) emitGetArg(ew *errWriter, ins BFInstruction) {
	reg := g.regs.argRegister(ins.Count)
	if reg == nil {
		g.diags.Warnf("Accepting stack arguments isnt available currently")
		return
	}
	if ins.Address {
		ew.printf("\tmov%s %%%s, %%%s\n", g.width.suffix(), reg.widthName(g.width), g.regs.Frame.widthName(g.width))
		return
	}
	ew.printf("\tmov%s %%%s, (%%%s)\n", g.width.suffix(), reg.widthName(g.width), g.regs.Frame.Name64)
}
