package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/avro-runtime/host"
)

var (
	runList bool
	runWASI bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <module.wasm> [export] [args...]",
		Short: "Run a WebAssembly guest against the avro.legacy host module",
		Long: `The run command instantiates the avro.legacy host module, then the
guest module, and calls one of the guest's exported functions with integer
arguments. Handles left open by the guest are released on exit.

Example:
  avro run guest.wasm --list
  avro run guest.wasm decode_all 0 128 --wasi`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRun,
	}
	cmd.Flags().BoolVar(&runList, "list", false, "List exported functions and exit")
	cmd.Flags().BoolVar(&runWASI, "wasi", false, "Provide wasi_snapshot_preview1 to the guest")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}

	h := host.New(newLibrary(), host.Options{Logger: cliLogger})
	defer h.Close()

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	if runWASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			return fmt.Errorf("instantiate wasi: %w", err)
		}
	}
	if _, err := h.Instantiate(ctx, rt); err != nil {
		return err
	}

	cfg := wazero.NewModuleConfig().
		WithName("guest").
		WithStdout(cmd.OutOrStdout()).
		WithStderr(cmd.ErrOrStderr()).
		WithStartFunctions()
	mod, err := rt.InstantiateWithConfig(ctx, data, cfg)
	if err != nil {
		return fmt.Errorf("instantiate guest: %w", err)
	}

	out := cmd.OutOrStdout()
	if runList || len(args) < 2 {
		for _, line := range describeExports(mod) {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	fn := mod.ExportedFunction(args[1])
	if fn == nil {
		return fmt.Errorf("guest exports no function %q", args[1])
	}
	params, err := encodeParams(fn.Definition().ParamTypes(), args[2:])
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}
	fmt.Fprintln(out, formatResults(fn.Definition().ResultTypes(), results))

	if lastErr := h.LastError(); lastErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "last host error: %v\n", lastErr)
	}
	schemas, values := h.Handles()
	cliLogger.Debug("guest finished",
		zap.String("export", args[1]),
		zap.Int("open_schemas", schemas),
		zap.Int("open_values", values))
	return nil
}

func describeExports(mod api.Module) []string {
	defs := mod.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		def := defs[name]
		lines = append(lines, fmt.Sprintf("%s(%s) -> (%s)",
			name, typeList(def.ParamTypes()), typeList(def.ResultTypes())))
	}
	return lines
}

func typeList(types []api.ValueType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = api.ValueTypeName(t)
	}
	return strings.Join(parts, ", ")
}

func encodeParams(types []api.ValueType, args []string) ([]uint64, error) {
	if len(args) != len(types) {
		return nil, fmt.Errorf("expected %d argument(s), got %d", len(types), len(args))
	}
	params := make([]uint64, len(args))
	for i, arg := range args {
		switch types[i] {
		case api.ValueTypeI32:
			v, err := strconv.ParseInt(arg, 0, 32)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			params[i] = api.EncodeI32(int32(v))
		case api.ValueTypeI64:
			v, err := strconv.ParseInt(arg, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			params[i] = api.EncodeI64(v)
		case api.ValueTypeF32:
			v, err := strconv.ParseFloat(arg, 32)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			params[i] = api.EncodeF32(float32(v))
		case api.ValueTypeF64:
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			params[i] = api.EncodeF64(v)
		default:
			return nil, fmt.Errorf("argument %d: unsupported type %s", i, api.ValueTypeName(types[i]))
		}
	}
	return params, nil
}

func formatResults(types []api.ValueType, results []uint64) string {
	parts := make([]string, len(results))
	for i, r := range results {
		switch types[i] {
		case api.ValueTypeI32:
			parts[i] = strconv.FormatInt(int64(api.DecodeI32(r)), 10)
		case api.ValueTypeI64:
			parts[i] = strconv.FormatInt(int64(r), 10)
		case api.ValueTypeF32:
			parts[i] = strconv.FormatFloat(float64(api.DecodeF32(r)), 'g', -1, 32)
		case api.ValueTypeF64:
			parts[i] = strconv.FormatFloat(api.DecodeF64(r), 'g', -1, 64)
		default:
			parts[i] = strconv.FormatUint(r, 10)
		}
	}
	return strings.Join(parts, " ")
}
