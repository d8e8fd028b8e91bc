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
	"fmt"
	"io"
)

// Diagnostics accumulates non-fatal warnings produced while parsing or
// generating code (the tokenizer reports none). The pipeline never aborts on these; it
// reports and keeps going (bf++ is a translator, not a verifier).
type Diagnostics struct {
	messages []string
}

// Warnf records a formatted diagnostic line.
func (d *Diagnostics) Warnf(format string, args ...any) {
	d.messages = append(d.messages, fmt.Sprintf(format, args...))
}

// Len reports how many diagnostics have been recorded.
func (d *Diagnostics) Len() int {
	return len(d.messages)
}

// Emit writes every recorded diagnostic to w, one per line.
func (d *Diagnostics) Emit(w io.Writer) {
	for _, m := range d.messages {
		fmt.Fprintln(w, m)
	}
}
