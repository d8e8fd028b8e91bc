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

// tokenizerState is the tokenizer's four-state DFA.
type tokenizerState uint8

const (
	stateNormal tokenizerState = iota
	stateAlpha
	stateNumber
	stateSymbol
)

// scratchLimit bounds the identifier/number scratch buffer, mirroring the
// reference tokenizer's fixed 512-byte `build` array. Identifiers longer
// than this are out of scope (§4.1).
const scratchLimit = 512

// tokenizerContext carries the DFA's running state across one pass over
// the input buffer.
type tokenizerContext struct {
	src   []byte
	pos   int
	line  int
	state tokenizerState
	cur   TokenType
	build [scratchLimit]byte
	blen  int
	toks  []Token
}

func (c *tokenizerContext) addChar(b byte) {
	if c.blen < scratchLimit {
		c.build[c.blen] = b
		c.blen++
	}
}

func (c *tokenizerContext) eatToken() {
	if c.blen > 0 {
		c.toks = append(c.toks, Token{
			Val:  string(c.build[:c.blen]),
			Line: c.line,
			Type: c.cur,
		})
		c.blen = 0
	}
}

// assumeReserve pre-scans the input counting Symbol/Special bytes, used as
// a capacity hint for the token slice. This is a performance hint, not a
// correctness contract.
func assumeReserve(src []byte) int {
	n := 0
	for _, b := range src {
		switch classify(b) {
		case CharSymbol, CharSpecial:
			n++
		}
	}
	return n
}

// Tokenize lexes src into an ordered token stream. It never backtracks.
func Tokenize(src []byte) []Token {
	ensureLookup()

	ctx := &tokenizerContext{
		src:   src,
		line:  1,
		state: stateNormal,
		toks:  make([]Token, 0, assumeReserve(src)),
	}

	for ctx.pos < len(src) {
		b := src[ctx.pos]
		ctx.route(b, classify(b))
		ctx.pos++
	}
	// Flush any trailing pending token, same as the reference's final
	// EatToken() call after the scan loop ends.
	ctx.eatToken()

	classifyKeywords(ctx.toks)
	return ctx.toks
}

// route dispatches the current byte to its state handler. Each state
// handler may itself fall through to callBasedOnType, which is how a
// state transition and the first byte of the new run are handled in the
// same step (mirrors RerouteTokenizer/CallBasedOnType in the reference).
func (c *tokenizerContext) route(b byte, ct CharType) {
	switch c.state {
	case stateNormal:
		c.normalState(b, ct)
	case stateAlpha:
		c.alphaState(b, ct)
	case stateNumber:
		c.numberState(b, ct)
	case stateSymbol:
		c.symbolState(b, ct)
	}
}

// callBasedOnType enters the state appropriate for ct and, for
// Alpha/Number/Symbol, immediately processes b in that new state so the
// triggering byte isn't dropped.
func (c *tokenizerContext) callBasedOnType(b byte, ct CharType) {
	switch ct {
	case CharSpecial:
		if b == '\n' {
			c.line++
		}
		c.state = stateNormal
	case CharSymbol:
		c.state = stateSymbol
		c.symbolState(b, ct)
	case CharNumber:
		c.cur = TDecimal
		c.state = stateNumber
		c.numberState(b, ct)
	case CharAlpha:
		c.cur = TAlpha
		c.state = stateAlpha
		c.alphaState(b, ct)
	}
}

func (c *tokenizerContext) normalState(b byte, ct CharType) {
	c.callBasedOnType(b, ct)
}

func (c *tokenizerContext) alphaState(b byte, ct CharType) {
	switch ct {
	case CharAlpha, CharNumber:
		c.addChar(b)
	default:
		c.eatToken()
		c.callBasedOnType(b, ct)
	}
}

func (c *tokenizerContext) symbolState(b byte, ct CharType) {
	if ct == CharSymbol {
		c.addChar(b)
		c.cur = symbolTypes[b]
		c.eatToken()
		return
	}
	c.callBasedOnType(b, ct)
}

func (c *tokenizerContext) numberState(b byte, ct CharType) {
	switch {
	case ct == CharNumber:
		c.addChar(b)
	case b == '.' && c.cur != TFloat:
		c.cur = TFloat
		c.addChar(b)
	case b == 'x' && c.blen == 1 && c.cur != THex:
		c.cur = THex
		c.addChar(b)
	case ct == CharAlpha && c.cur == THex:
		c.addChar(b)
	default:
		c.eatToken()
		c.callBasedOnType(b, ct)
	}
}
