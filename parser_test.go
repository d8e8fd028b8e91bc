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
	"testing"
)

func parse(t *testing.T, src string) (*ParsedContext, *Diagnostics) {
	t.Helper()
	diags := &Diagnostics{}
	toks := Tokenize([]byte(src))
	return Parse(toks, diags), diags
}

func TestParseLoopTokenTypesAtBoundaries(t *testing.T) {
	ctx, diags := parse(t, "@main: void\n[->+<]\n")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.messages)
	}
	if len(ctx.DoneLoops) != 1 {
		t.Fatalf("got %d done loops, want 1", len(ctx.DoneLoops))
	}
	loop := ctx.DoneLoops[0]
	if ctx.tokens[loop.Start].Type != TLSquare {
		t.Errorf("loop start token type = %v, want TLSquare", ctx.tokens[loop.Start].Type)
	}
	if ctx.tokens[loop.End].Type != TRSquare {
		t.Errorf("loop end token type = %v, want TRSquare", ctx.tokens[loop.End].Type)
	}
}

func TestParseOpenLoopStackEmptyWhenBalanced(t *testing.T) {
	ctx, _ := parse(t, "@main: void\n[-[+]]\n")
	if len(ctx.openLoops) != 0 {
		t.Errorf("open loop stack = %d entries, want 0 for balanced brackets", len(ctx.openLoops))
	}
	if len(ctx.DoneLoops) != 2 {
		t.Errorf("got %d done loops, want 2", len(ctx.DoneLoops))
	}
}

func TestParseOpenLoopStackNonEmptyWhenUnbalanced(t *testing.T) {
	ctx, _ := parse(t, "@main: void\n[-[+]\n")
	if len(ctx.openLoops) != 1 {
		t.Errorf("open loop stack = %d entries, want 1 for one unmatched '['", len(ctx.openLoops))
	}
}

func TestParseInstructionCountsMatchTokenCounts(t *testing.T) {
	ctx, _ := parse(t, "@main: void\n+++--><.\n")

	counts := map[BFInstructionType]uint32{}
	for _, ins := range ctx.Ins {
		counts[ins.Type] += ins.Count
	}

	if counts[InsPlus] != 3 {
		t.Errorf("plus count = %d, want 3", counts[InsPlus])
	}
	if counts[InsMinus] != 2 {
		t.Errorf("minus count = %d, want 2", counts[InsMinus])
	}
	if counts[InsRight] != 1 {
		t.Errorf("right count = %d, want 1", counts[InsRight])
	}
	if counts[InsLeft] != 1 {
		t.Errorf("left count = %d, want 1", counts[InsLeft])
	}
	if counts[InsOutput] != 1 {
		t.Errorf("output count = %d, want 1", counts[InsOutput])
	}
}

func TestParseLabelsPartitionPositionRange(t *testing.T) {
	ctx, diags := parse(t, "@a: void\n+\n@b: void\n-\n")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.messages)
	}
	if len(ctx.Labels) != 2 {
		t.Fatalf("got %d labels, want 2", len(ctx.Labels))
	}
	for i := 0; i < len(ctx.Labels)-1; i++ {
		if ctx.Labels[i].End != ctx.Labels[i+1].Start {
			t.Errorf("label %d End = %d, want %d (label %d Start)", i, ctx.Labels[i].End, ctx.Labels[i+1].Start, i+1)
		}
	}
	if last := ctx.Labels[len(ctx.Labels)-1]; last.End != 0 {
		t.Errorf("last label End = %d, want 0 (open to end of input)", last.End)
	}
}

func TestParseLabelTypeFromTypeKeyword(t *testing.T) {
	ctx, diags := parse(t, "@compute: i32\n+\n")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.messages)
	}
	if len(ctx.Labels) != 1 {
		t.Fatalf("got %d labels, want 1", len(ctx.Labels))
	}
	if ctx.Labels[0].Type != KwI32 {
		t.Errorf("label type = %v, want KwI32", ctx.Labels[0].Type)
	}
	if ctx.Labels[0].Name != "compute" {
		t.Errorf("label name = %q, want %q", ctx.Labels[0].Name, "compute")
	}
}

func TestParseLabelWithoutColonDefaultsVoid(t *testing.T) {
	ctx, diags := parse(t, "@main\n+\n")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.messages)
	}
	if ctx.Labels[0].Type != KwVoid {
		t.Errorf("label type = %v, want KwVoid", ctx.Labels[0].Type)
	}
}

func TestParseGlobalReturnRejected(t *testing.T) {
	_, diags := parse(t, "+!\n")
	if diags.Len() == 0 {
		t.Fatalf("expected a diagnostic for a global return")
	}
}

func TestParseReturnInsideLabelRecorded(t *testing.T) {
	ctx, diags := parse(t, "@main: void\n+!\n")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.messages)
	}
	if len(ctx.Rets) != 1 {
		t.Fatalf("got %d returns, want 1", len(ctx.Rets))
	}
	if ctx.Rets[0].Label != 0 {
		t.Errorf("return label index = %d, want 0", ctx.Rets[0].Label)
	}
}

func TestParseMovDecimalAndHex(t *testing.T) {
	ctx, diags := parse(t, "@main: void\n?mov 65\n?mov 0x41\n")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.messages)
	}
	if len(ctx.Movs) != 2 {
		t.Fatalf("got %d movs, want 2", len(ctx.Movs))
	}
	if ctx.Movs[0].Val != 65 {
		t.Errorf("mov[0] = %d, want 65", ctx.Movs[0].Val)
	}
	if ctx.Movs[1].Val != 65 {
		t.Errorf("mov[1] = %d, want 65", ctx.Movs[1].Val)
	}
}

func TestParseMovBadValueDiagnostic(t *testing.T) {
	_, diags := parse(t, "@main: void\n?mov foo\n")
	if diags.Len() == 0 {
		t.Fatalf("expected a diagnostic for a non-numeric mov operand")
	}
}

func TestParseMovAbruptEndDiagnostic(t *testing.T) {
	_, diags := parse(t, "@main: void\n?mov")
	if diags.Len() == 0 {
		t.Fatalf("expected a diagnostic for a mov with no operand")
	}
}

func TestParseExternAndCall(t *testing.T) {
	ctx, diags := parse(t, "@main: void\n?extern puts\n?call puts\n")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.messages)
	}
	if len(ctx.Externs) != 1 || ctx.Externs[0] != "puts" {
		t.Fatalf("externs = %v, want [puts]", ctx.Externs)
	}
	if len(ctx.Calls) != 1 || ctx.Calls[0].Name != "puts" {
		t.Fatalf("calls = %v, want one call to puts", ctx.Calls)
	}
}

func TestParseWidthSwitchRecorded(t *testing.T) {
	ctx, diags := parse(t, "@main: void\n?i16+\n")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.messages)
	}
	if len(ctx.Switches) != 1 || ctx.Switches[0].To != WidthWord {
		t.Fatalf("switches = %v, want one switch to WidthWord", ctx.Switches)
	}
}

func TestParseAddressOfMarksLastInstruction(t *testing.T) {
	ctx, diags := parse(t, "@main: void\n*^\n")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.messages)
	}
	if len(ctx.Ins) == 0 || !ctx.Ins[len(ctx.Ins)-1].Address {
		t.Fatalf("expected last instruction to be marked Address, got %+v", ctx.Ins)
	}
}
