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

// StripLineComments replaces every `;`-to-end-of-line region in src with
// spaces, preserving line numbers and byte offsets for the tokenizer that
// runs afterward.
func StripLineComments(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	inComment := false
	for i, b := range out {
		if b == '\n' {
			inComment = false
			continue
		}
		if inComment {
			out[i] = ' '
			continue
		}
		if b == ';' {
			inComment = true
			out[i] = ' '
		}
	}
	return out
}
