package dump

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"

	"github.com/wasmkit/wasmkit/interpreter"
	"github.com/wasmkit/wasmkit/wasm"
)

// Command returns the "dump" subcommand: decode (but do not
// instantiate) a module and emit one CSV row per defined function
// describing its shape, the way a profiler's first pass would.
func Command() *cobra.Command {
	command := &cobra.Command{
		Use:   "dump <path to module>",
		Short: "Decode a module and emit per-function statistics as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("expected a path to a wasm module")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			def, err := interpreter.Decode(data)
			if err != nil {
				return err
			}

			return dumpStats(os.Stdout, def.Module())
		},
	}
	return command
}

type row struct {
	Funcidx          int `csv:"funcidx"`
	Params           int `csv:"params"`
	Results          int `csv:"results"`
	LocalCount       int `csv:"local count"`
	LabelCount       int `csv:"label count"`
	InstructionCount int `csv:"instruction count"`
	BodyBytes        int `csv:"body bytes"`

	Control  int `csv:"control"`
	Call     int `csv:"call"`
	Variable int `csv:"variable"`
	Memory   int `csv:"memory"`
	Table    int `csv:"table"`
	Numeric  int `csv:"numeric"`
	Bulk     int `csv:"bulk/saturating"`
}

func dumpStats(w io.Writer, m *wasm.Module) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	encoder := csvutil.NewEncoder(csvWriter)

	firstDefined := m.NumFuncImports()
	for i := firstDefined; i < len(m.Funcs); i++ {
		f := &m.Funcs[i]
		cont := m.Continuations[i-firstDefined]

		r := row{
			Funcidx:    i,
			Params:     len(f.Type.Params),
			Results:    len(f.Type.Results),
			LocalCount: int(f.Code.NumLocals),
			LabelCount: len(cont.LabelEnd),
			BodyBytes:  len(f.Code.Body),
		}

		err := wasm.WalkInstructions(f.Code.Body, func(offset int, op wasm.Opcode) error {
			r.InstructionCount++
			switch op {
			case wasm.OpUnreachable, wasm.OpNop, wasm.OpBlock, wasm.OpLoop, wasm.OpIf, wasm.OpElse, wasm.OpEnd,
				wasm.OpBr, wasm.OpBrIf, wasm.OpBrTable, wasm.OpReturn, wasm.OpDrop, wasm.OpSelect, wasm.OpSelectTyped:
				r.Control++
			case wasm.OpCall, wasm.OpCallIndirect:
				r.Call++
			case wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee, wasm.OpGlobalGet, wasm.OpGlobalSet,
				wasm.OpRefNull, wasm.OpRefIsNull, wasm.OpRefFunc:
				r.Variable++
			case wasm.OpMemorySize, wasm.OpMemoryGrow,
				wasm.OpI32Load, wasm.OpI64Load, wasm.OpF32Load, wasm.OpF64Load,
				wasm.OpI32Load8S, wasm.OpI32Load8U, wasm.OpI32Load16S, wasm.OpI32Load16U,
				wasm.OpI64Load8S, wasm.OpI64Load8U, wasm.OpI64Load16S, wasm.OpI64Load16U, wasm.OpI64Load32S, wasm.OpI64Load32U,
				wasm.OpI32Store, wasm.OpI64Store, wasm.OpF32Store, wasm.OpF64Store,
				wasm.OpI32Store8, wasm.OpI32Store16, wasm.OpI64Store8, wasm.OpI64Store16, wasm.OpI64Store32:
				r.Memory++
			case wasm.OpTableGet, wasm.OpTableSet:
				r.Table++
			case wasm.OpPrefixFC:
				r.Bulk++
			default:
				r.Numeric++
			}
			return nil
		})
		if err != nil {
			return err
		}

		if err := encoder.Encode(r); err != nil {
			return err
		}
	}

	return nil
}
