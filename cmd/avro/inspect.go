package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/avro-runtime/binding"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <schema>",
		Short: "Parse a schema and report its kind, names and fingerprint",
		Long: `The inspect command parses a schema and prints its kind, declared
name, namespace, Parsing Canonical Form and CRC-64-AVRO fingerprint.

Example:
  avro inspect long
  avro inspect @user.avsc --json`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}
}

type schemaInfo struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Namespace   string   `json:"namespace,omitempty"`
	Canonical   string   `json:"canonical"`
	Fingerprint string   `json:"fingerprint"`
	Symbols     []string `json:"symbols,omitempty"`
	Size        int      `json:"size,omitempty"`
	Token       uint32   `json:"token"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	m := binding.New(newLibrary())
	sh, err := openSchema(m, args[0])
	if err != nil {
		return err
	}
	defer sh.Release()

	info, err := describeSchema(sh)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, info)
	}

	fmt.Fprintf(out, "Type:        %s\n", info.Type)
	fmt.Fprintf(out, "Name:        %s\n", info.Name)
	if info.FullName != info.Name {
		fmt.Fprintf(out, "Full name:   %s\n", info.FullName)
	}
	if len(info.Symbols) > 0 {
		fmt.Fprintf(out, "Symbols:     %s\n", strings.Join(info.Symbols, ", "))
	}
	if info.Size > 0 {
		fmt.Fprintf(out, "Size:        %d\n", info.Size)
	}
	fmt.Fprintf(out, "Fingerprint: %s\n", info.Fingerprint)
	fmt.Fprintf(out, "Canonical:   %s\n", info.Canonical)
	return nil
}

// describeSchema derives the schema's interface so the canonical form and
// fingerprint are available for primitives too.
func describeSchema(sh *binding.SchemaHandle) (schemaInfo, error) {
	if _, err := sh.Interface(); err != nil {
		return schemaInfo{}, err
	}
	s := sh.Schema()
	return schemaInfo{
		Type:        sh.Type().String(),
		Name:        sh.Name(),
		FullName:    s.FullName(),
		Namespace:   s.Namespace(),
		Canonical:   s.Canonical(),
		Fingerprint: fmt.Sprintf("%016x", s.Fingerprint()),
		Symbols:     s.Symbols(),
		Size:        s.Size(),
		Token:       uint32(sh.Token()),
	}, nil
}
