package run

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wasmkit/wasmkit/exec"
	"github.com/wasmkit/wasmkit/interpreter"
	"github.com/wasmkit/wasmkit/wasm"
)

// Command returns the "run" subcommand: decode, validate, and
// instantiate a module, optionally invoking one of its exports
// afterward. Imports are not resolved against any host ABI — the
// runtime's Non-goals exclude WASI and friends — so a module that
// imports anything beyond what an empty import set can satisfy fails
// to link, and that failure is reported like any other.
func Command() *cobra.Command {
	var invokeName string
	var invokeArgs []string

	command := &cobra.Command{
		Use:   "run <path to module>",
		Short: "Decode, validate, instantiate, and optionally invoke a module",
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

			inst, err := interpreter.Instantiate(def)
			if err != nil {
				return err
			}

			if invokeName == "" {
				return nil
			}

			callArgs := make([]exec.Value, len(invokeArgs))
			for i, a := range invokeArgs {
				v, err := strconv.ParseInt(a, 10, 32)
				if err != nil {
					return fmt.Errorf("argument %d: %w", i, err)
				}
				callArgs[i] = exec.NewI32(int32(v))
			}

			results, err := inst.Invoke(invokeName, callArgs)
			if err != nil {
				return err
			}

			for i, r := range results {
				if i > 0 {
					fmt.Fprint(os.Stdout, " ")
				}
				fmt.Fprint(os.Stdout, formatValue(r))
			}
			if len(results) > 0 {
				fmt.Fprintln(os.Stdout)
			}
			return nil
		},
	}

	command.Flags().StringVar(&invokeName, "invoke", "", "name of an exported function to call after instantiation")
	command.Flags().StringArrayVar(&invokeArgs, "arg", nil, "an i32 argument to pass to the invoked function (repeatable, in order)")

	return command
}

func formatValue(v exec.Value) string {
	switch {
	case v.Type.IsReferenceType():
		if v.IsNullRef() {
			return "null"
		}
		return "ref"
	case v.Type == wasm.ValueTypeF32:
		return strconv.FormatFloat(float64(v.F32()), 'g', -1, 32)
	case v.Type == wasm.ValueTypeF64:
		return strconv.FormatFloat(v.F64(), 'g', -1, 64)
	case v.Type == wasm.ValueTypeI64:
		return strconv.FormatInt(v.I64(), 10)
	default:
		return strconv.FormatInt(int64(v.I32()), 10)
	}
}
