package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/avro-runtime/binding"
	"github.com/wippyai/avro-runtime/codec"
)

var (
	// Global flags
	verbose   bool
	jsonOut   bool
	maxValues int

	cliLogger = zap.NewNop()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avro",
		Short: "Inspect Avro schemas and convert Avro data",
		Long: `avro parses Avro schemas, converts data between Avro JSON and the
Avro binary encoding, and runs WebAssembly guests against the avro.legacy
host module.

A schema argument is a primitive type name (int, string, ...), schema JSON
text, or @path to a file containing schema JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	cmd.PersistentFlags().IntVar(&maxValues, "max-values", 0, "Limit on live values (0 = unlimited)")

	cmd.AddCommand(
		newInspectCmd(),
		newEncodeCmd(),
		newDecodeCmd(),
		newRunCmd(),
		newInteractiveCmd(),
		newVersionCmd(),
	)
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupLogging() error {
	if !verbose {
		cliLogger = zap.NewNop()
		return nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	cliLogger = l
	return nil
}

func newLibrary() *codec.Library {
	return codec.New(codec.Options{
		Logger:    cliLogger,
		MaxValues: maxValues,
	})
}

// schemaArg resolves @path arguments to the file's contents.
func schemaArg(arg string) (string, error) {
	path, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return arg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read schema: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func openSchema(m *binding.Module, arg string) (*binding.SchemaHandle, error) {
	text, err := schemaArg(arg)
	if err != nil {
		return nil, err
	}
	sh, _, err := m.Schema(text)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// nextValue constructs a value into v, reusing it when it already exists.
func nextValue(sh *binding.SchemaHandle, v *binding.ValueHandle) (*binding.ValueHandle, error) {
	if v == nil {
		return sh.NewRawValue(nil)
	}
	if _, err := sh.NewRawValue(v); err != nil {
		return v, err
	}
	return v, nil
}

// printJSON outputs data as indented JSON.
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
