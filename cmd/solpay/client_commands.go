package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/hernandor/solpay/client"
)

func serverFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Value:   "http://localhost:8080",
		Usage:   "HTTP server URL",
		EnvVars: []string{"SOLPAY_SERVER_URL"},
	}
}

func tokenFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "token",
		Aliases: []string{"t"},
		Usage:   "Bearer token for authenticated requests",
		EnvVars: []string{"SOLPAY_TOKEN"},
	}
}

func newAPIClient(c *cli.Context) *client.Client {
	cl := client.NewClient(c.String("server"), nil, quietLogger())
	if token := c.String("token"); token != "" {
		cl.SetToken(token)
	}
	return cl
}

func clientCommands() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Commands that talk to a running solpay server",
		Subcommands: []*cli.Command{
			clientLoginCommand(),
			clientPaymentURLCommand(),
			clientVerifyCommand(),
			clientBalanceCommand(),
			clientProductsCommand(),
		},
	}
}

func clientLoginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Authenticate and print a bearer token",
		ArgsUsage: "USERNAME PASSWORD",
		Flags: []cli.Flag{
			serverFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("username and password are required")
			}

			cl := newAPIClient(c)
			token, err := cl.Login(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}
}

func clientPaymentURLCommand() *cli.Command {
	return &cli.Command{
		Name:      "payment-url",
		Usage:     "Ask the server to generate a payment URL",
		ArgsUsage: "[RECIPIENT_ADDRESS]",
		Flags: []cli.Flag{
			serverFlag(),
			tokenFlag(),
			&cli.Float64Flag{
				Name:    "amount",
				Aliases: []string{"a"},
				Usage:   "Payment amount in SOL",
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
			&cli.BoolFlag{
				Name:    "qr",
				Aliases: []string{"q"},
				Usage:   "Also request a QR code data URI",
			},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			cl := newAPIClient(c)

			resp, err := cl.GeneratePaymentURL(context.Background(), client.PaymentURLRequest{
				Recipient: c.Args().Get(0),
				Amount:    c.Float64("amount"),
				Label:     c.String("label"),
				Message:   c.String("message"),
				QRCode:    c.Bool("qr"),
			})
			if err != nil {
				return fmt.Errorf("failed to generate payment URL: %w", err)
			}

			if c.Bool("json") {
				data, _ := json.Marshal(resp)
				fmt.Println(string(data))
				return nil
			}

			fmt.Println(resp.PaymentURL)
			if resp.QRCode != "" {
				fmt.Println(resp.QRCode)
			}
			return nil
		},
	}
}

func clientVerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Ask the server to verify a transaction signature",
		ArgsUsage: "SIGNATURE",
		Flags: []cli.Flag{
			serverFlag(),
			tokenFlag(),
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("transaction signature is required")
			}

			cl := newAPIClient(c)
			result, err := cl.VerifyPayment(context.Background(), c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("verification request failed: %w", err)
			}

			if c.Bool("json") {
				data, _ := json.Marshal(result)
				fmt.Println(string(data))
				return nil
			}

			if !result.Verified {
				fmt.Printf("✗ Not verified\n")
				fmt.Printf("  Error: %s\n", result.Error)
				return nil
			}
			fmt.Printf("✓ Transaction verified\n")
			fmt.Printf("  Signature: %s\n", result.Signature)
			fmt.Printf("  Slot: %d\n", result.Slot)
			return nil
		},
	}
}

func clientBalanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Ask the server for an address's SOL balance",
		ArgsUsage: "ADDRESS",
		Flags: []cli.Flag{
			serverFlag(),
			tokenFlag(),
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("address is required")
			}

			address := c.Args().Get(0)
			cl := newAPIClient(c)
			balance, err := cl.Balance(context.Background(), address)
			if err != nil {
				return fmt.Errorf("balance request failed: %w", err)
			}

			if c.Bool("json") {
				data, _ := json.Marshal(map[string]interface{}{
					"address": address,
					"balance": balance,
				})
				fmt.Println(string(data))
				return nil
			}

			if balance == nil {
				fmt.Printf("Balance unavailable for %s\n", address)
				return nil
			}
			fmt.Printf("%s: %.9f SOL\n", address, *balance)
			return nil
		},
	}
}

func clientProductsCommand() *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "List the server's product catalog",
		Flags: []cli.Flag{
			serverFlag(),
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			cl := newAPIClient(c)
			products, err := cl.ListProducts(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}

			if c.Bool("json") {
				data, _ := json.Marshal(products)
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tQUANTITY")
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\t%g\t%d\n", p.ID, p.Name, p.Price, p.Quantity)
			}
			return w.Flush()
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check the server's health endpoint",
		Flags: []cli.Flag{
			serverFlag(),
		},
		Action: func(c *cli.Context) error {
			cl := newAPIClient(c)
			if err := cl.Health(context.Background()); err != nil {
				return err
			}
			fmt.Println("✓ Server is healthy")
			return nil
		},
	}
}
