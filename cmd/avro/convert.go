package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/avro-runtime/binding"
)

var (
	encodeHex bool
	decodeHex bool
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <schema> [datum]",
		Short: "Encode Avro JSON data to the Avro binary encoding",
		Long: `The encode command reads Avro JSON data, one datum per line, from the
datum argument or standard input and writes the binary encoding of each.
A single value is reused for every datum.

Example:
  avro encode long 42 --hex
  cat users.jsonl | avro encode @user.avsc > users.bin`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runEncode,
	}
	cmd.Flags().BoolVar(&encodeHex, "hex", false, "Write one hex line per datum instead of raw bytes")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <schema> [file]",
		Short: "Decode concatenated Avro binary data to Avro JSON",
		Long: `The decode command reads concatenated binary data from a file or
standard input and prints each datum as one line of Avro JSON. A single
value is reused for every datum.

Example:
  avro decode @user.avsc users.bin
  echo 0662626f623c | avro decode @user.avsc --hex`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runDecode,
	}
	cmd.Flags().BoolVar(&decodeHex, "hex", false, "Input is hex text")
	return cmd
}

func runEncode(cmd *cobra.Command, args []string) error {
	m := binding.New(newLibrary())
	sh, err := openSchema(m, args[0])
	if err != nil {
		return err
	}
	defer sh.Release()

	var in io.Reader = cmd.InOrStdin()
	if len(args) > 1 {
		in = strings.NewReader(args[1])
	}

	var v *binding.ValueHandle
	defer func() {
		if v != nil {
			v.Release()
		}
	}()

	out := cmd.OutOrStdout()
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if v, err = nextValue(sh, v); err != nil {
			return err
		}
		if _, err := v.Value().DecodeJSON([]byte(text)); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		bin, err := v.Value().EncodeBinary(nil)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if encodeHex {
			_, err = fmt.Fprintln(out, hex.EncodeToString(bin))
		} else {
			_, err = out.Write(bin)
		}
		if err != nil {
			return err
		}
	}
	return sc.Err()
}

func runDecode(cmd *cobra.Command, args []string) error {
	m := binding.New(newLibrary())
	sh, err := openSchema(m, args[0])
	if err != nil {
		return err
	}
	defer sh.Release()

	var data []byte
	if len(args) > 1 {
		data, err = os.ReadFile(args[1])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if decodeHex {
		if data, err = parseHex(data); err != nil {
			return err
		}
	}

	v, err := sh.NewRawValue(nil)
	if err != nil {
		return err
	}
	defer v.Release()

	out := cmd.OutOrStdout()
	for n := 1; len(data) > 0; n++ {
		if _, err := sh.NewRawValue(v); err != nil {
			return err
		}
		rest, err := v.Value().DecodeBinary(data)
		if err != nil {
			return fmt.Errorf("datum %d: %w", n, err)
		}
		if len(rest) == len(data) {
			return fmt.Errorf("datum %d: %d trailing bytes", n, len(rest))
		}
		data = rest

		text, err := v.Value().EncodeJSON(nil)
		if err != nil {
			return fmt.Errorf("datum %d: %w", n, err)
		}
		if _, err := fmt.Fprintln(out, string(text)); err != nil {
			return err
		}
	}
	return nil
}

func parseHex(text []byte) ([]byte, error) {
	compact := bytes.Join(bytes.Fields(text), nil)
	out := make([]byte, hex.DecodedLen(len(compact)))
	if _, err := hex.Decode(out, compact); err != nil {
		return nil, fmt.Errorf("hex input: %w", err)
	}
	return out, nil
}
