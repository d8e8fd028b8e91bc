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
	"strings"
	"testing"
)

func TestTokenizeEachSymbolIsOneToken(t *testing.T) {
	const symbols = `!@#$%^&*()+-=\|[]{}"';:,<.>/?~`
	toks := Tokenize([]byte(symbols))
	if len(toks) != len(symbols) {
		t.Fatalf("got %d tokens for %d symbols, want 1:1", len(toks), len(symbols))
	}
	for i, r := range symbols {
		if toks[i].Val != string(r) {
			t.Errorf("token %d = %q, want %q", i, toks[i].Val, string(r))
		}
	}
}

func TestTokenizeConcatenationDropsOnlyWhitespace(t *testing.T) {
	src := "@main: void\n+++ . [->+<]"
	toks := Tokenize([]byte(src))

	var got strings.Builder
	for _, tok := range toks {
		got.WriteString(tok.Val)
	}

	var want strings.Builder
	for _, b := range []byte(src) {
		if classify(b) != CharSpecial {
			want.WriteByte(b)
		}
	}

	if got.String() != want.String() {
		t.Errorf("concatenated tokens = %q, want %q", got.String(), want.String())
	}
}

func TestTokenizeLineNumbersMonotonic(t *testing.T) {
	src := "@main\nvoid\n+++\n.\n"
	toks := Tokenize([]byte(src))
	for i := 1; i < len(toks); i++ {
		if toks[i].Line < toks[i-1].Line {
			t.Errorf("token %d line %d < token %d line %d", i, toks[i].Line, i-1, toks[i-1].Line)
		}
	}
}

func TestTokenizeIdentifierAndKeyword(t *testing.T) {
	toks := Tokenize([]byte("main void mov"))
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3", len(toks))
	}
	if toks[0].Type != TAlpha || toks[0].Kwd != KwNone {
		t.Errorf("token 0 = %+v, want ALPHA/None", toks[0])
	}
	if toks[1].Kwd != KwVoid {
		t.Errorf("token 1 kwd = %v, want KwVoid", toks[1].Kwd)
	}
	if toks[2].Kwd != KwMov {
		t.Errorf("token 2 kwd = %v, want KwMov", toks[2].Kwd)
	}
}

func TestTokenizeDecimal(t *testing.T) {
	toks := Tokenize([]byte("123"))
	if len(toks) != 1 || toks[0].Type != TDecimal || toks[0].Val != "123" {
		t.Fatalf("got %+v, want single DECIMAL '123'", toks)
	}
}

func TestTokenizeHex(t *testing.T) {
	toks := Tokenize([]byte("0x41"))
	if len(toks) != 1 || toks[0].Type != THex || toks[0].Val != "0x41" {
		t.Fatalf("got %+v, want single HEX '0x41'", toks)
	}
}

func TestTokenizeHexPromotesOnAnySingleDigitPrefix(t *testing.T) {
	// 'x' promotes a number to HEX whenever it arrives as the second
	// buffered byte, regardless of what that first digit was.
	toks := Tokenize([]byte("9x1"))
	if len(toks) != 1 || toks[0].Type != THex || toks[0].Val != "9x1" {
		t.Fatalf("got %+v, want single HEX '9x1'", toks)
	}
}

func TestTokenizeFloat(t *testing.T) {
	toks := Tokenize([]byte("3.14"))
	if len(toks) != 1 || toks[0].Type != TFloat || toks[0].Val != "3.14" {
		t.Fatalf("got %+v, want single FLOAT '3.14'", toks)
	}
}

func TestTokenizeHexAcceptsUnvalidatedTrailingAlpha(t *testing.T) {
	// §9 ambiguity (iii): the hex sub-rule buffers any trailing Alpha byte
	// without checking it's a valid hex digit.
	toks := Tokenize([]byte("0xzzz"))
	if len(toks) != 1 || toks[0].Type != THex || toks[0].Val != "0xzzz" {
		t.Fatalf("got %+v, want single HEX '0xzzz'", toks)
	}
}

func TestTokenizeScratchLimitTruncates(t *testing.T) {
	long := strings.Repeat("a", scratchLimit+10)
	toks := Tokenize([]byte(long))
	if len(toks) != 1 {
		t.Fatalf("got %d tokens, want 1", len(toks))
	}
	if len(toks[0].Val) != scratchLimit {
		t.Errorf("token value length = %d, want %d", len(toks[0].Val), scratchLimit)
	}
}
