package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/argon-chat/cbor-cose.go/cbor"
	"github.com/argon-chat/cbor-cose.go/internal/logging"
)

func newDiagnoseCommand() *cobra.Command {
	var fromDiagnostic bool

	cmd := &cobra.Command{
		Use:   "diagnose [hex]",
		Short: "Render CBOR bytes as diagnostic notation, or parse notation back to bytes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.For("diagnose")
			var input string
			if len(args) == 1 {
				input = args[0]
			} else {
				raw, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				input = strings.TrimSpace(string(raw))
			}

			if fromDiagnostic {
				parser := cbor.NewDiagnosticParser()
				item, err := parser.Parse(input)
				if err != nil {
					return err
				}
				out, err := cbor.EncodeToBytes(item)
				if err != nil {
					return err
				}
				log.Debugf("parsed %d bytes of diagnostic notation", len(input))
				fmt.Println(hex.EncodeToString(out))
				return nil
			}

			data, err := hex.DecodeString(input)
			if err != nil {
				return fmt.Errorf("input is not valid hex: %w", err)
			}
			dec := cbor.NewDecoder(data, cbor.DefaultTagRegistry())
			item, err := dec.Next()
			if err != nil {
				return err
			}
			log.Debugf("decoded %d bytes", len(data))
			fmt.Println(cbor.Diagnose(item))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromDiagnostic, "from-diagnostic", false, "parse diagnostic notation to CBOR bytes instead of rendering it")
	return cmd
}
