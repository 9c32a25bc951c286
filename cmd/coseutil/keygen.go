package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/argon-chat/cbor-cose.go/cose"
	"github.com/argon-chat/cbor-cose.go/internal/logging"
)

func newKeygenCommand() *cobra.Command {
	var curveName, format, kidFlag string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an EC2 COSE key, stamping a random kid if none is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.For("keygen")

			var curve elliptic.Curve
			var curveID int64
			switch curveName {
			case "", "P-256":
				curve, curveID = elliptic.P256(), cose.CurveP256
			case "P-384":
				curve, curveID = elliptic.P384(), cose.CurveP384
			case "P-521":
				curve, curveID = elliptic.P521(), cose.CurveP521
			default:
				return fmt.Errorf("unsupported curve %q", curveName)
			}

			priv, err := ecdsa.GenerateKey(curve, rand.Reader)
			if err != nil {
				return fmt.Errorf("generating key: %w", err)
			}

			kid := kidFlag
			if kid == "" {
				kid = uuid.NewString()
				log.Debugf("generated kid %s", kid)
			}

			n := (curve.Params().BitSize + 7) / 8
			xb := make([]byte, n)
			yb := make([]byte, n)
			priv.X.FillBytes(xb)
			priv.Y.FillBytes(yb)
			db := make([]byte, n)
			priv.D.FillBytes(db)

			key := &cose.Key{
				Kty:   cose.KeyTypeEC2,
				Kid:   []byte(kid),
				Curve: curveID,
				X:     xb,
				Y:     yb,
				D:     db,
			}

			switch format {
			case "", "cose":
				out, err := key.Encode()
				if err != nil {
					return err
				}
				fmt.Println(hex.EncodeToString(out))
			case "jwk":
				out, err := key.ToJWK()
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			default:
				return fmt.Errorf("unsupported --format %q", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&curveName, "curve", "P-256", "EC2 curve: P-256, P-384, or P-521")
	cmd.Flags().StringVar(&format, "format", "cose", "output format: cose or jwk")
	cmd.Flags().StringVar(&kidFlag, "kid", "", "key id (random UUID if omitted)")
	return cmd
}
