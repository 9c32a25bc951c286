package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/argon-chat/cbor-cose.go/cose"
	"github.com/argon-chat/cbor-cose.go/internal/cryptoprov"
	"github.com/argon-chat/cbor-cose.go/internal/logging"
)

func newSign1Command() *cobra.Command {
	var keyHex, payload string

	cmd := &cobra.Command{
		Use:   "sign1",
		Short: "Sign a payload into a COSE_Sign1 message using an EC2 key (ES256/ES384/ES512 by curve)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.For("sign1")

			keyBytes, err := hex.DecodeString(keyHex)
			if err != nil {
				return fmt.Errorf("--key is not valid hex: %w", err)
			}
			key, err := cose.DecodeKey(keyBytes)
			if err != nil {
				return err
			}
			if key.Kty != cose.KeyTypeEC2 || len(key.D) == 0 {
				return fmt.Errorf("sign1 requires an EC2 key with a private scalar (d)")
			}

			curve, err := curveFor(key.Curve)
			if err != nil {
				return err
			}
			priv := &ecdsa.PrivateKey{
				PublicKey: ecdsa.PublicKey{
					Curve: curve,
					X:     new(big.Int).SetBytes(key.X),
					Y:     new(big.Int).SetBytes(key.Y),
				},
				D: new(big.Int).SetBytes(key.D),
			}
			provider := cryptoprov.NewECDSAProvider(priv, nil)

			alg, err := algForCurve(key.Curve)
			if err != nil {
				return err
			}
			signer := cose.NewSigner(provider, key.Kid)
			msg, err := signer.Sign1(alg, []byte(payload), nil)
			if err != nil {
				return err
			}
			out, err := msg.Encode()
			if err != nil {
				return err
			}
			log.Debugf("signed %d-byte payload", len(payload))
			fmt.Println(hex.EncodeToString(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "hex-encoded COSE_Key with a private scalar")
	cmd.Flags().StringVar(&payload, "payload", "", "payload text to sign")
	cmd.MarkFlagRequired("key")
	return cmd
}

func curveFor(id int64) (elliptic.Curve, error) {
	switch id {
	case cose.CurveP256:
		return elliptic.P256(), nil
	case cose.CurveP384:
		return elliptic.P384(), nil
	case cose.CurveP521:
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("unsupported curve id %d", id)
	}
}

func algForCurve(id int64) (int64, error) {
	switch id {
	case cose.CurveP256:
		return cose.AlgES256, nil
	case cose.CurveP384:
		return cose.AlgES384, nil
	case cose.CurveP521:
		return cose.AlgES512, nil
	default:
		return 0, fmt.Errorf("unsupported curve id %d", id)
	}
}
