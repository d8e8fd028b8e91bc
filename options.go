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

// CompileOptions bundles the two frame-layout tunables the reference
// implementation hardcodes as global ALLOCATE/BASE_OFFSET.
type CompileOptions struct {
	// Allocate is the headroom (in bytes) reserved below the frame
	// pointer for the bf++ tape.
	Allocate uint32
	// BaseOffset is how far below the saved frame pointer the tape
	// cursor starts. A value <= 0 omits the prologue's offset subtraction.
	BaseOffset int32
}

// DefaultCompileOptions mirrors the reference's ALLOCATE=16384,
// BASE_OFFSET=128.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{
		Allocate:   16384,
		BaseOffset: 128,
	}
}
