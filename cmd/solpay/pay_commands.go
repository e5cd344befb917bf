package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hernandor/solpay/service/config"
	"github.com/hernandor/solpay/service/solanapay"
)

func rpcURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "rpc-url",
		Aliases: []string{"r"},
		Value:   config.DefaultSolanaRPCURL,
		Usage:   "Solana RPC endpoint URL",
		EnvVars: []string{"SOLANA_RPC_URL"},
	}
}

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "json",
		Aliases: []string{"j"},
		Usage:   "Output as JSON",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func generateURLCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate-url",
		Aliases:   []string{"url"},
		Usage:     "Generate a Solana Pay payment URL",
		ArgsUsage: "RECIPIENT_ADDRESS",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "amount",
				Aliases: []string{"a"},
				Usage:   "Payment amount in SOL (omitted from the URL when not positive)",
			},
			&cli.StringFlag{
				Name:  "spl-token",
				Usage: "SPL token mint address for token payments",
			},
			&cli.StringFlag{
				Name:  "reference",
				Usage: "Reference public key for transaction lookup",
			},
			&cli.StringFlag{
				Name:    "label",
				Aliases: []string{"l"},
				Usage:   "Merchant label shown in the wallet",
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Message shown in the wallet",
			},
			&cli.StringFlag{
				Name:  "memo",
				Usage: "Memo to include in the transaction",
			},
			&cli.BoolFlag{
				Name:    "qr",
				Aliases: []string{"q"},
				Usage:   "Also emit the URL as a QR code data URI",
			},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("recipient address is required")
			}

			paymentURL, err := solanapay.BuildPaymentURL(solanapay.PaymentRequest{
				Recipient: c.Args().Get(0),
				Amount:    c.Float64("amount"),
				SPLToken:  c.String("spl-token"),
				Reference: c.String("reference"),
				Label:     c.String("label"),
				Message:   c.String("message"),
				Memo:      c.String("memo"),
			})
			if err != nil {
				return fmt.Errorf("failed to build payment URL: %w", err)
			}

			var qr string
			if c.Bool("qr") {
				qr, err = solanapay.EncodeQR(paymentURL)
				if err != nil {
					return fmt.Errorf("failed to encode QR code: %w", err)
				}
			}

			if c.Bool("json") {
				out := map[string]string{"payment_url": paymentURL}
				if qr != "" {
					out["qr_code"] = qr
				}
				data, _ := json.Marshal(out)
				fmt.Println(string(data))
				return nil
			}

			fmt.Println(paymentURL)
			if qr != "" {
				fmt.Println(qr)
			}
			return nil
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify a transaction signature on chain",
		ArgsUsage: "SIGNATURE",
		Flags: []cli.Flag{
			rpcURLFlag(),
			&cli.StringFlag{
				Name:  "expected-recipient",
				Usage: "Recipient hint recorded alongside the verification",
			},
			&cli.Float64Flag{
				Name:  "expected-amount",
				Usage: "Amount hint recorded alongside the verification",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "RPC request timeout",
			},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("transaction signature is required")
			}

			rpcURL := c.String("rpc-url")
			verifier := solanapay.NewVerifier(solanapay.NewRPCClient(rpcURL), rpcURL, nil, quietLogger())

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			result := verifier.Verify(ctx, c.Args().Get(0), solanapay.VerifyOptions{
				ExpectedRecipient: c.String("expected-recipient"),
				ExpectedAmount:    c.Float64("expected-amount"),
			})

			if c.Bool("json") {
				data, _ := json.Marshal(result)
				fmt.Println(string(data))
			} else {
				printVerificationResult(os.Stdout, result)
			}

			if !result.Verified {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func printVerificationResult(w io.Writer, result solanapay.VerificationResult) {
	if !result.Verified {
		fmt.Fprintf(w, "✗ Not verified\n")
		fmt.Fprintf(w, "  Error: %s\n", result.Error)
		return
	}

	fmt.Fprintf(w, "✓ Transaction verified\n")
	fmt.Fprintf(w, "  Signature: %s\n", result.Signature)
	fmt.Fprintf(w, "  Slot: %d\n", result.Slot)
	if result.BlockTime != nil {
		fmt.Fprintf(w, "  Block Time: %s\n", result.BlockTime.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(w, "  Fee: %d lamports\n", result.Fee)
}

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Look up the SOL balance of an address",
		ArgsUsage: "ADDRESS",
		Flags: []cli.Flag{
			rpcURLFlag(),
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "RPC request timeout",
			},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("address is required")
			}

			address := c.Args().Get(0)
			rpcURL := c.String("rpc-url")
			verifier := solanapay.NewVerifier(solanapay.NewRPCClient(rpcURL), rpcURL, nil, quietLogger())

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			balance := verifier.GetBalance(ctx, address)

			if c.Bool("json") {
				data, _ := json.Marshal(map[string]interface{}{
					"address": address,
					"balance": balance,
				})
				fmt.Println(string(data))
			} else if balance == nil {
				fmt.Printf("Balance unavailable for %s\n", address)
			} else {
				fmt.Printf("%s: %.9f SOL\n", address, *balance)
			}

			if balance == nil {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}
