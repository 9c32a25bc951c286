package main

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/argon-chat/cbor-cose.go/cose"
	"github.com/argon-chat/cbor-cose.go/internal/cryptoprov"
	"github.com/argon-chat/cbor-cose.go/internal/logging"
)

func newVerify1Command() *cobra.Command {
	var keyHex, msgHex string

	cmd := &cobra.Command{
		Use:   "verify1",
		Short: "Verify a COSE_Sign1 message against an EC2 public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.For("verify1")

			keyBytes, err := hex.DecodeString(keyHex)
			if err != nil {
				return fmt.Errorf("--key is not valid hex: %w", err)
			}
			key, err := cose.DecodeKey(keyBytes)
			if err != nil {
				return err
			}
			if key.Kty != cose.KeyTypeEC2 {
				return fmt.Errorf("verify1 requires an EC2 key")
			}

			curve, err := curveFor(key.Curve)
			if err != nil {
				return err
			}
			pub := &ecdsa.PublicKey{
				Curve: curve,
				X:     new(big.Int).SetBytes(key.X),
				Y:     new(big.Int).SetBytes(key.Y),
			}
			provider := cryptoprov.NewECDSAProvider(nil, pub)

			msgBytes, err := hex.DecodeString(msgHex)
			if err != nil {
				return fmt.Errorf("--message is not valid hex: %w", err)
			}
			msg, err := cose.DecodeSign1Message(msgBytes)
			if err != nil {
				return err
			}

			verifier := cose.NewFixedVerifier(provider)
			if err := verifier.VerifySign1(msg, nil, nil); err != nil {
				return err
			}
			log.Infof("signature OK, payload: %s", string(msg.Payload))
			fmt.Println("OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "hex-encoded COSE_Key public key")
	cmd.Flags().StringVar(&msgHex, "message", "", "hex-encoded COSE_Sign1 message")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("message")
	return cmd
}
