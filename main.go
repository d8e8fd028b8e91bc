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
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// OutputKind is the file kind implied by the -o extension.
type OutputKind uint8

const (
	OutputAssembly OutputKind = iota
	OutputObject
)

const tempAssemblyName = "__temp_bfpp_assembly__file.s"

// classifyOutput resolves an output path's extension (case-insensitively)
// into an OutputKind, its extension-stripped base, and the normalized
// extension. Matches the reference's GetFileExtension/tolower handling.
func classifyOutput(output string) (kind OutputKind, base string, ext string, err error) {
	ext = strings.ToLower(filepath.Ext(output))
	base = strings.TrimSuffix(output, filepath.Ext(output))

	switch ext {
	case ".s", ".asm":
		return OutputAssembly, base, ext, nil
	case ".o", ".obj":
		return OutputObject, base, ext, nil
	default:
		return 0, "", "", errors.New("bf++: error: Unknown file extension")
	}
}

// CompilePipeline runs the tokenizer, parser, and code generator over src
// and returns the generated AT&T assembly text. This is the CLI-free,
// directly testable core entry point.
func CompilePipeline(src []byte, opts CompileOptions) ([]byte, *Diagnostics, error) {
	diags := &Diagnostics{}

	stripped := StripLineComments(src)
	toks := Tokenize(stripped)
	parsed := Parse(toks, diags)

	var buf bytes.Buffer
	gen := NewGenerator(parsed, opts, diags)
	if err := gen.Generate(&buf); err != nil {
		return nil, diags, err
	}
	return buf.Bytes(), diags, nil
}

// runCommand runs a command and returns its combined output, mirroring
// the teacher's runCommand helper in main.go.
func runCommand(verbose bool, name string, arg ...string) (string, error) {
	if verbose {
		fmt.Fprintf(os.Stderr, "Running %v\n", append([]string{name}, arg...))
	}
	cmd := exec.Command(name, arg...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			return "", errors.New(string(output))
		}
		return "", err
	}
	return string(output), nil
}

// assemblerAvailable reports whether name resolves on PATH, the
// cross-platform equivalent of the reference's which/where probe.
func assemblerAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// assembleObject writes asm to a temp assembly file, invokes assembler to
// produce objPath, and removes the temp file on every exit path
// (including when the assembler fails), per SPEC_FULL.md §6.
func assembleObject(asm []byte, assembler, objPath string, verbose bool) error {
	if err := os.WriteFile(tempAssemblyName, asm, 0o644); err != nil {
		return fmt.Errorf("bf++: error: %w", err)
	}
	defer os.Remove(tempAssemblyName)

	if _, err := runCommand(verbose, assembler, tempAssemblyName, "-o", objPath); err != nil {
		return err
	}
	return nil
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:  "bfpp <input> -o <output>[.s|.asm|.o|.obj]",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "bf++: error: no input files")
			os.Exit(1)
		}
		input := args[0]

		output, _ := cmd.Flags().GetString("output")
		assembler, _ := cmd.Flags().GetString("assembler")
		allocate, _ := cmd.Flags().GetUint32("allocate")
		baseOffset, _ := cmd.Flags().GetInt32("base-offset")

		kind, base, ext, err := classifyOutput(output)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if kind == OutputObject {
			if assembler == "" {
				assembler = "as"
			}
			if !assemblerAvailable(assembler) {
				fmt.Fprintf(os.Stderr, "bf++: error: Assembler %s not found\n", assembler)
				os.Exit(1)
			}
		}

		src, err := os.ReadFile(input)
		if err != nil || len(src) == 0 {
			fmt.Println("bf++: error: File not found or empty")
		}

		opts := CompileOptions{Allocate: allocate, BaseOffset: baseOffset}
		asm, diags, err := CompilePipeline(src, opts)
		diags.Emit(os.Stderr)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		switch kind {
		case OutputAssembly:
			if err := os.WriteFile(base+ext, asm, 0o644); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		case OutputObject:
			if err := assembleObject(asm, assembler, base+ext, verbose); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "", "output file (.s, .asm, .o, .obj)")
	rootCmd.PersistentFlags().StringP("assembler", "a", "", "external assembler to invoke for object output (default: as)")
	rootCmd.PersistentFlags().Uint32("allocate", 16384, "tape headroom reserved below the frame pointer, in bytes")
	rootCmd.PersistentFlags().Int32("base-offset", 128, "offset of the tape cursor below the saved frame pointer")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print external commands before running them")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
