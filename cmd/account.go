package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gharmitra/societyledger/internal/client"
	"github.com/gharmitra/societyledger/internal/ledger"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the chart of accounts",
}

// account create
var (
	acctCreateCode    string
	acctCreateName    string
	acctCreateType    string
	acctCreateSubType string
	acctCreateFixed   bool
)

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		acct := &ledger.Account{
			Code:           acctCreateCode,
			Name:           acctCreateName,
			Type:           ledger.AccountType(acctCreateType),
			SubType:        ledger.SubType(acctCreateSubType),
			IsFixedExpense: acctCreateFixed,
		}

		created, err := c.CreateAccount(context.Background(), acct)
		if err != nil {
			return err
		}

		fmt.Printf("Account created: %s %s (%s)\n", created.Code, created.Name, created.Type)
		return nil
	},
}

// account list
var acctListType string

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		accounts, err := c.ListAccounts(context.Background(), acctListType)
		if err != nil {
			return err
		}

		if len(accounts) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}

		fmt.Printf("%-6s %-35s %-10s %-20s %s\n", "CODE", "NAME", "TYPE", "SUB-TYPE", "FIXED")
		fmt.Printf("%-6s %-35s %-10s %-20s %s\n", "----", "----", "----", "--------", "-----")
		for _, a := range accounts {
			name := a.Name
			if len(name) > 33 {
				name = name[:33] + ".."
			}
			fixed := ""
			if a.IsFixedExpense {
				fixed = "yes"
			}
			fmt.Printf("%-6s %-35s %-10s %-20s %s\n", a.Code, name, a.Type, a.SubType, fixed)
		}
		return nil
	},
}

// account get
var accountGetCmd = &cobra.Command{
	Use:   "get [code]",
	Short: "Get account details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		acct, err := c.GetAccount(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Code:     %s\n", acct.Code)
		fmt.Printf("Name:     %s\n", acct.Name)
		fmt.Printf("Type:     %s\n", acct.Type)
		if acct.SubType != "" {
			fmt.Printf("Sub-type: %s\n", acct.SubType)
		}
		fmt.Printf("Fixed:    %v\n", acct.IsFixedExpense)
		fmt.Printf("Created:  %s\n", acct.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

// account balance
var acctBalanceAsOn string

var accountBalanceCmd = &cobra.Command{
	Use:   "balance [code]",
	Short: "Get account balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		var asOn time.Time
		if acctBalanceAsOn != "" {
			var err error
			asOn, err = time.Parse("2006-01-02", acctBalanceAsOn)
			if err != nil {
				return fmt.Errorf("invalid --as-on date: %w", err)
			}
		}

		acct, err := c.GetAccountBalance(context.Background(), args[0], asOn)
		if err != nil {
			return err
		}

		fmt.Printf("Account: %s %s\n", acct.Code, acct.Name)
		fmt.Printf("Balance: %s (%s)\n", acct.CurrentBalance.StringFixed(2), ledger.NormalSide(acct.Type))
		return nil
	},
}

func init() {
	accountCreateCmd.Flags().StringVar(&acctCreateCode, "code", "", "Account code (e.g. 1010)")
	accountCreateCmd.Flags().StringVar(&acctCreateName, "name", "", "Account name")
	accountCreateCmd.Flags().StringVar(&acctCreateType, "type", "", "Account type (asset, liability, capital, income, expense)")
	accountCreateCmd.Flags().StringVar(&acctCreateSubType, "sub-type", "", "Sub-type (current_asset, fixed_asset, current_liability, long_term_liability)")
	accountCreateCmd.Flags().BoolVar(&acctCreateFixed, "fixed-expense", false, "Count this expense account in variable billing's fixed share")
	accountCreateCmd.MarkFlagRequired("code")
	accountCreateCmd.MarkFlagRequired("name")
	accountCreateCmd.MarkFlagRequired("type")

	accountListCmd.Flags().StringVar(&acctListType, "type", "", "Filter by account type")
	accountBalanceCmd.Flags().StringVar(&acctBalanceAsOn, "as-on", "", "Balance as of date (YYYY-MM-DD)")

	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountGetCmd)
	accountCmd.AddCommand(accountBalanceCmd)

	rootCmd.AddCommand(accountCmd)
}
