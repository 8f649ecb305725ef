package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gharmitra/societyledger/internal/client"
	"github.com/gharmitra/societyledger/internal/ledger"
)

var transactionCmd = &cobra.Command{
	Use:   "transaction",
	Short: "Record and inspect income and expense transactions",
}

// transaction create
var (
	txnCreateType    string
	txnCreateAccount string
	txnCreateFlat    string
	txnCreateAmount  string
	txnCreateDesc    string
	txnCreateDate    string
	txnCreateDoc     string
	txnCreateMode    string
)

var transactionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		amount, err := decimal.NewFromString(txnCreateAmount)
		if err != nil {
			return fmt.Errorf("invalid --amount: %w", err)
		}
		date, err := time.Parse("2006-01-02", txnCreateDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}

		txn := &ledger.Transaction{
			Type:           ledger.TransactionType(txnCreateType),
			AccountCode:    txnCreateAccount,
			FlatID:         txnCreateFlat,
			Amount:         amount,
			Description:    txnCreateDesc,
			Date:           date,
			DocumentNumber: txnCreateDoc,
			PaymentMode:    ledger.PaymentMode(txnCreateMode),
		}

		created, err := c.CreateTransaction(context.Background(), txn)
		if err != nil {
			return err
		}

		fmt.Printf("Transaction recorded: %s %s %s to %s on %s\n",
			created.ID, created.Type, created.Amount.StringFixed(2),
			created.AccountCode, created.Date.Format("2006-01-02"))
		return nil
	},
}

// transaction list
var (
	txnListAccount string
	txnListFlat    string
)

var transactionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		txns, err := c.ListTransactions(context.Background(), txnListAccount, txnListFlat)
		if err != nil {
			return err
		}

		if len(txns) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}

		fmt.Printf("%-36s %-10s %-8s %-6s %12s %s\n", "ID", "DATE", "TYPE", "ACCT", "AMOUNT", "DESCRIPTION")
		for _, t := range txns {
			desc := t.Description
			if len(desc) > 40 {
				desc = desc[:38] + ".."
			}
			fmt.Printf("%-36s %-10s %-8s %-6s %12s %s\n",
				t.ID, t.Date.Format("2006-01-02"), t.Type, t.AccountCode,
				t.Amount.StringFixed(2), desc)
		}
		return nil
	},
}

// transaction get
var transactionGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get transaction details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		t, err := c.GetTransaction(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", t.ID)
		fmt.Printf("Type:        %s\n", t.Type)
		fmt.Printf("Account:     %s\n", t.AccountCode)
		if t.FlatID != "" {
			fmt.Printf("Flat:        %s\n", t.FlatID)
		}
		fmt.Printf("Amount:      %s\n", t.Amount.StringFixed(2))
		fmt.Printf("Date:        %s\n", t.Date.Format("2006-01-02"))
		fmt.Printf("Mode:        %s\n", t.PaymentMode)
		if t.DocumentNumber != "" {
			fmt.Printf("Document:    %s\n", t.DocumentNumber)
		}
		fmt.Printf("Description: %s\n", t.Description)
		return nil
	},
}

// transaction delete
var transactionDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a transaction (blocked in closed years)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		if err := c.DeleteTransaction(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Transaction deleted.")
		return nil
	},
}

func init() {
	transactionCreateCmd.Flags().StringVar(&txnCreateType, "type", "", "income or expense")
	transactionCreateCmd.Flags().StringVar(&txnCreateAccount, "account", "", "Linked account code")
	transactionCreateCmd.Flags().StringVar(&txnCreateFlat, "flat", "", "Flat ID for member payments")
	transactionCreateCmd.Flags().StringVar(&txnCreateAmount, "amount", "", "Amount, up to 2 decimal places")
	transactionCreateCmd.Flags().StringVar(&txnCreateDesc, "description", "", "Description")
	transactionCreateCmd.Flags().StringVar(&txnCreateDate, "date", "", "Transaction date (YYYY-MM-DD)")
	transactionCreateCmd.Flags().StringVar(&txnCreateDoc, "document", "", "Receipt or voucher number")
	transactionCreateCmd.Flags().StringVar(&txnCreateMode, "mode", "cash", "Payment mode: cash or bank")
	transactionCreateCmd.MarkFlagRequired("type")
	transactionCreateCmd.MarkFlagRequired("account")
	transactionCreateCmd.MarkFlagRequired("amount")
	transactionCreateCmd.MarkFlagRequired("description")
	transactionCreateCmd.MarkFlagRequired("date")

	transactionListCmd.Flags().StringVar(&txnListAccount, "account", "", "Filter by account code")
	transactionListCmd.Flags().StringVar(&txnListFlat, "flat", "", "Filter by flat ID")

	transactionCmd.AddCommand(transactionCreateCmd)
	transactionCmd.AddCommand(transactionListCmd)
	transactionCmd.AddCommand(transactionGetCmd)
	transactionCmd.AddCommand(transactionDeleteCmd)

	rootCmd.AddCommand(transactionCmd)
}
