package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khalidIbrahima/kstores-sub002/internal/config"
	"github.com/khalidIbrahima/kstores-sub002/internal/diagnostics"
	"github.com/khalidIbrahima/kstores-sub002/internal/notifier"
	"github.com/khalidIbrahima/kstores-sub002/internal/senders"
	"github.com/khalidIbrahima/kstores-sub002/internal/store"
	"github.com/khalidIbrahima/kstores-sub002/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "notifyctl",
		Short: "admin diagnostics for the order notification channels",
	}
	rootCmd.AddCommand(
		testConnectionCommand(),
		debugOrderCommand(),
		sendCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildHarness() *diagnostics.Harness {
	logger := utils.NewLogger()
	cfg := config.Load(logger)

	st, err := store.Open(cfg.DatabaseDSN)
	utils.FailOnError(logger, err, "Failed to connect to database")

	emailSender := senders.NewSMTPEmailSender(cfg, logger)
	waSender := senders.NewTwilioWhatsAppSender(cfg, logger)
	n := notifier.New(emailSender, waSender, st, cfg.ChannelTimeout, logger)
	return diagnostics.NewHarness(st, n, waSender, cfg.AdminPhone, logger)
}

func testConnectionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "send a diagnostic WhatsApp message to the admin contact",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result := buildHarness().TestConnection(context.Background())
			if !result.Success {
				fmt.Println("Connection test failed:", result.Error)
				os.Exit(1)
			}
			fmt.Println("Connection test OK")
		},
	}
}

func debugOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-order [order-id]",
		Short: "replay the full notification fan-out for an order",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result, err := buildHarness().DebugOrder(context.Background(), args[0])
			if err != nil {
				fmt.Println("Debug fan-out failed:", err)
				os.Exit(1)
			}
			out, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(out))
		},
	}
}

func sendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send [destination] [body]",
		Short: "send a raw WhatsApp message through the configured sender",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := buildHarness().SendDirect(context.Background(), args[0], args[1]); err != nil {
				fmt.Println("Send failed:", err)
				os.Exit(1)
			}
			fmt.Println("Message sent")
		},
	}
}
