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

// Register is a System V AMD64 general-purpose register descriptor: its
// four width-qualified names, plus the generator's sync-peephole state.
type Register struct {
	Name64, Name32, Name16, Name8 string

	CachedValue int64
	Synced      bool
}

// widthName returns the register's name at the given width, without the
// leading '%' sigil.
func (r *Register) widthName(w Width) string {
	switch w {
	case WidthByte:
		return r.Name8
	case WidthWord:
		return r.Name16
	case WidthDword:
		return r.Name32
	default:
		return r.Name64
	}
}

// unsync clears the register's sync-peephole state; any event that may
// clobber a register's contents calls this first.
func (r *Register) unsync() {
	r.Synced = false
}

// RegisterFile is the fixed set of AMD64 registers the generator drives:
// the frame/stack pointers, the six System V argument registers, and the
// remaining general-purpose registers the argument/getarg/call paths
// touch. Field names match the reference's BFPPRegisters layout.
type RegisterFile struct {
	Frame Register // rbp: the bf++ tape cursor
	Stack Register // rsp

	RAX, RCX, RDX, RBX Register
	RSI, RDI           Register
	R8, R9, R10, R11   Register
	R12, R13, R14, R15 Register
}

// NewRegisterFile builds the System V AMD64 register set with its four
// width-qualified names each. Note R15's 8-bit name is r15b (the
// reference repeats r15w for both the 16- and 8-bit fields, a bug fixed
// here per SPEC_FULL.md §4 ambiguity (iv)).
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{
		Frame: Register{Name64: "rbp", Name32: "ebp", Name16: "bp", Name8: "bpl"},
		Stack: Register{Name64: "rsp", Name32: "esp", Name16: "sp", Name8: "spl"},

		RAX: Register{Name64: "rax", Name32: "eax", Name16: "ax", Name8: "al"},
		RCX: Register{Name64: "rcx", Name32: "ecx", Name16: "cx", Name8: "cl"},
		RDX: Register{Name64: "rdx", Name32: "edx", Name16: "dx", Name8: "dl"},
		RBX: Register{Name64: "rbx", Name32: "ebx", Name16: "bx", Name8: "bl"},

		RSI: Register{Name64: "rsi", Name32: "esi", Name16: "si", Name8: "sil"},
		RDI: Register{Name64: "rdi", Name32: "edi", Name16: "di", Name8: "dil"},

		R8:  Register{Name64: "r8", Name32: "r8d", Name16: "r8w", Name8: "r8b"},
		R9:  Register{Name64: "r9", Name32: "r9d", Name16: "r9w", Name8: "r9b"},
		R10: Register{Name64: "r10", Name32: "r10d", Name16: "r10w", Name8: "r10b"},
		R11: Register{Name64: "r11", Name32: "r11d", Name16: "r11w", Name8: "r11b"},
		R12: Register{Name64: "r12", Name32: "r12d", Name16: "r12w", Name8: "r12b"},
		R13: Register{Name64: "r13", Name32: "r13d", Name16: "r13w", Name8: "r13b"},
		R14: Register{Name64: "r14", Name32: "r14d", Name16: "r14w", Name8: "r14b"},
		R15: Register{Name64: "r15", Name32: "r15d", Name16: "r15w", Name8: "r15b"},
	}
}

// argRegisters returns the System V integer argument registers 1..6 in
// order, as pointers so callers can mutate sync state in place.
func (rf *RegisterFile) argRegisters() [6]*Register {
	return [6]*Register{&rf.RDI, &rf.RSI, &rf.RDX, &rf.RCX, &rf.R8, &rf.R9}
}

// argRegister returns the n-th (1-based) argument register, or nil if n
// is outside 1..6 (the caller must spill to the stack instead).
func (rf *RegisterFile) argRegister(n uint32) *Register {
	if n < 1 || n > 6 {
		return nil
	}
	regs := rf.argRegisters()
	return regs[n-1]
}

// unsyncArgsAndReturn clears every argument register's sync state plus
// rax, the set a `call` clobbers under the System V ABI.
func (rf *RegisterFile) unsyncArgsAndReturn() {
	for _, r := range rf.argRegisters() {
		r.unsync()
	}
	rf.RAX.unsync()
}

// GetMultiplier returns the byte multiplier for a cursor step at width w:
// `<`/`>` move the tape cursor by count*multiplier bytes.
func GetMultiplier(w Width) int {
	return int(w)
}

// suffix returns the GAS AT&T instruction-size suffix for width w.
func (w Width) suffix() string {
	switch w {
	case WidthByte:
		return "b"
	case WidthWord:
		return "w"
	case WidthDword:
		return "l"
	default:
		return "q"
	}
}
