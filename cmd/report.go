package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gharmitra/societyledger/internal/client"
	"github.com/gharmitra/societyledger/internal/ledger"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Derive financial reports",
}

var (
	reportAsOn string
	reportFrom string
	reportTo   string
)

func reportAsOnDate() (time.Time, error) {
	if reportAsOn == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", reportAsOn)
}

func reportRange() (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if reportFrom != "" {
		if from, err = time.Parse("2006-01-02", reportFrom); err != nil {
			return from, to, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if reportTo != "" {
		if to, err = time.Parse("2006-01-02", reportTo); err != nil {
			return from, to, fmt.Errorf("invalid --to: %w", err)
		}
	}
	return from, to, nil
}

var reportTrialBalanceCmd = &cobra.Command{
	Use:   "trial-balance",
	Short: "Trial balance as of a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		asOn, err := reportAsOnDate()
		if err != nil {
			return err
		}
		tb, err := c.TrialBalance(context.Background(), asOn)
		if err != nil {
			return err
		}

		fmt.Printf("Trial Balance as on %s\n\n", tb.AsOnDate)
		fmt.Printf("%-6s %-35s %14s %14s\n", "CODE", "ACCOUNT", "DEBIT", "CREDIT")
		for _, l := range tb.Lines {
			fmt.Printf("%-6s %-35s %14s %14s\n",
				l.AccountCode, l.AccountName, l.Debit.StringFixed(2), l.Credit.StringFixed(2))
		}
		fmt.Printf("%-42s %14s %14s\n", "TOTAL", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
		if !tb.IsBalanced {
			fmt.Printf("\nWARNING: trial balance is out by %s\n", tb.Difference.StringFixed(2))
		}
		return nil
	},
}

var reportBalanceSheetCmd = &cobra.Command{
	Use:   "balance-sheet",
	Short: "Balance sheet as of a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		asOn, err := reportAsOnDate()
		if err != nil {
			return err
		}
		bs, err := c.BalanceSheet(context.Background(), asOn)
		if err != nil {
			return err
		}

		fmt.Printf("Balance Sheet as on %s\n", bs.AsOnDate)
		printSection := func(title string, lines []ledger.BalanceSheetLine) {
			if len(lines) == 0 {
				return
			}
			fmt.Printf("\n%s\n", title)
			for _, l := range lines {
				fmt.Printf("  %-6s %-35s %14s\n", l.AccountCode, l.AccountName, l.Balance.StringFixed(2))
			}
		}
		printSection("Current Assets", bs.CurrentAssets)
		printSection("Fixed Assets", bs.FixedAssets)
		printSection("Current Liabilities", bs.CurrentLiabilities)
		printSection("Long-term Liabilities", bs.LongTermLiabilities)
		printSection("Capital & Reserves", bs.Capital)

		fmt.Printf("\nSurplus:           %14s\n", bs.Surplus.StringFixed(2))
		fmt.Printf("Total Assets:      %14s\n", bs.TotalAssets.StringFixed(2))
		fmt.Printf("Total Liabilities: %14s\n", bs.TotalLiabilities.StringFixed(2))
		fmt.Printf("Total Capital:     %14s\n", bs.TotalCapital.StringFixed(2))
		if !bs.IsBalanced {
			fmt.Printf("\nWARNING: balance sheet is out by %s\n", bs.Difference.StringFixed(2))
		}
		return nil
	},
}

var reportIncomeExpenditureCmd = &cobra.Command{
	Use:   "income-expenditure",
	Short: "Income & expenditure for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		from, to, err := reportRange()
		if err != nil {
			return err
		}
		ie, err := c.IncomeExpenditure(context.Background(), from, to)
		if err != nil {
			return err
		}

		fmt.Printf("Income & Expenditure %s to %s\n\nIncome\n", ie.FromDate, ie.ToDate)
		for _, l := range ie.Income {
			fmt.Printf("  %-6s %-35s %14s\n", l.AccountCode, l.AccountName, l.Amount.StringFixed(2))
		}
		fmt.Println("Expenditure")
		for _, l := range ie.Expenditure {
			fmt.Printf("  %-6s %-35s %14s\n", l.AccountCode, l.AccountName, l.Amount.StringFixed(2))
		}
		fmt.Printf("\nTotal Income:      %14s\n", ie.TotalIncome.StringFixed(2))
		fmt.Printf("Total Expenditure: %14s\n", ie.TotalExpenditure.StringFixed(2))
		fmt.Printf("Surplus/Deficit:   %14s\n", ie.Surplus.StringFixed(2))
		return nil
	},
}

var reportReceiptsPaymentsCmd = &cobra.Command{
	Use:   "receipts-payments",
	Short: "Receipts & payments (cash basis) for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		from, to, err := reportRange()
		if err != nil {
			return err
		}
		rp, err := c.ReceiptsPayments(context.Background(), from, to)
		if err != nil {
			return err
		}

		fmt.Printf("Receipts & Payments %s to %s\n", rp.FromDate, rp.ToDate)
		fmt.Printf("\nOpening Balance:   %14s\n\nReceipts\n", rp.OpeningBalance.StringFixed(2))
		for _, l := range rp.Receipts {
			fmt.Printf("  %-6s %-35s %14s\n", l.AccountCode, l.AccountName, l.Amount.StringFixed(2))
		}
		fmt.Println("Payments")
		for _, l := range rp.Payments {
			fmt.Printf("  %-6s %-35s %14s\n", l.AccountCode, l.AccountName, l.Amount.StringFixed(2))
		}
		fmt.Printf("\nTotal Receipts:    %14s\n", rp.TotalReceipts.StringFixed(2))
		fmt.Printf("Total Payments:    %14s\n", rp.TotalPayments.StringFixed(2))
		fmt.Printf("Closing Balance:   %14s\n", rp.ClosingBalance.StringFixed(2))
		return nil
	},
}

var reportLedgerAccount string

var reportGeneralLedgerCmd = &cobra.Command{
	Use:   "general-ledger",
	Short: "One account's postings with a running balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		from, to, err := reportRange()
		if err != nil {
			return err
		}
		gl, err := c.GeneralLedger(context.Background(), reportLedgerAccount, from, to)
		if err != nil {
			return err
		}
		printLedger(gl)
		return nil
	},
}

var reportCashBookCmd = &cobra.Command{
	Use:   "cash-book",
	Short: "Cash account postings with a running balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		from, to, err := reportRange()
		if err != nil {
			return err
		}
		gl, err := c.CashBook(context.Background(), from, to)
		if err != nil {
			return err
		}
		printLedger(gl)
		return nil
	},
}

var reportBankBookCmd = &cobra.Command{
	Use:   "bank-book",
	Short: "Bank account postings with a running balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		from, to, err := reportRange()
		if err != nil {
			return err
		}
		gl, err := c.BankBook(context.Background(), from, to)
		if err != nil {
			return err
		}
		printLedger(gl)
		return nil
	},
}

func printLedger(gl *ledger.GeneralLedgerReport) {
	fmt.Printf("Ledger for %s %s, %s to %s\n\n", gl.AccountCode, gl.AccountName, gl.FromDate, gl.ToDate)
	fmt.Printf("Opening Balance: %s\n\n", gl.OpeningBalance.StringFixed(2))
	fmt.Printf("%-10s %-40s %12s %12s %14s\n", "DATE", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
	for _, e := range gl.Entries {
		desc := e.Description
		if len(desc) > 38 {
			desc = desc[:36] + ".."
		}
		fmt.Printf("%-10s %-40s %12s %12s %14s\n",
			e.Date, desc, e.Debit.StringFixed(2), e.Credit.StringFixed(2), e.Balance.StringFixed(2))
	}
	fmt.Printf("\nClosing Balance: %s\n", gl.ClosingBalance.StringFixed(2))
}

var reportMemberDuesCmd = &cobra.Command{
	Use:   "member-dues",
	Short: "Outstanding dues per flat",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		asOn, err := reportAsOnDate()
		if err != nil {
			return err
		}
		dues, err := c.MemberDues(context.Background(), asOn)
		if err != nil {
			return err
		}

		fmt.Printf("Member Dues as on %s\n\n", dues.AsOnDate)
		fmt.Printf("%-8s %-25s %12s %12s %12s %s\n", "FLAT", "OWNER", "BILLED", "PAID", "BALANCE", "STATUS")
		for _, row := range dues.Rows {
			fmt.Printf("%-8s %-25s %12s %12s %12s %s\n",
				row.FlatNumber, row.OwnerName,
				row.TotalBilled.StringFixed(2), row.TotalPaid.StringFixed(2),
				row.Balance.StringFixed(2), row.Status)
		}
		fmt.Printf("\nTotal Due: %s\n", dues.TotalDue.StringFixed(2))
		return nil
	},
}

var reportMemberLedgerCmd = &cobra.Command{
	Use:   "member-ledger [flat-id]",
	Short: "A flat's bills and payments with a running balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		from, to, err := reportRange()
		if err != nil {
			return err
		}
		ml, err := c.MemberLedger(context.Background(), args[0], from, to)
		if err != nil {
			return err
		}

		fmt.Printf("Member Ledger for flat %s, %s to %s\n\n", ml.FlatNumber, ml.FromDate, ml.ToDate)
		fmt.Printf("%-10s %-40s %12s %12s %14s\n", "DATE", "DESCRIPTION", "BILLED", "PAID", "BALANCE")
		for _, e := range ml.Entries {
			fmt.Printf("%-10s %-40s %12s %12s %14s\n",
				e.Date, e.Description, e.Debit.StringFixed(2), e.Credit.StringFixed(2), e.Balance.StringFixed(2))
		}
		fmt.Printf("\nBilled: %s  Paid: %s  Balance: %s\n",
			ml.TotalBilled.StringFixed(2), ml.TotalPaid.StringFixed(2), ml.Balance.StringFixed(2))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{reportTrialBalanceCmd, reportBalanceSheetCmd, reportMemberDuesCmd} {
		c.Flags().StringVar(&reportAsOn, "as-on", "", "Report date (YYYY-MM-DD), defaults to today")
	}
	for _, c := range []*cobra.Command{
		reportIncomeExpenditureCmd, reportReceiptsPaymentsCmd, reportGeneralLedgerCmd,
		reportCashBookCmd, reportBankBookCmd, reportMemberLedgerCmd,
	} {
		c.Flags().StringVar(&reportFrom, "from", "", "Period start (YYYY-MM-DD)")
		c.Flags().StringVar(&reportTo, "to", "", "Period end (YYYY-MM-DD)")
	}
	reportGeneralLedgerCmd.Flags().StringVar(&reportLedgerAccount, "account", "", "Account code")
	reportGeneralLedgerCmd.MarkFlagRequired("account")

	reportCmd.AddCommand(reportTrialBalanceCmd)
	reportCmd.AddCommand(reportBalanceSheetCmd)
	reportCmd.AddCommand(reportIncomeExpenditureCmd)
	reportCmd.AddCommand(reportReceiptsPaymentsCmd)
	reportCmd.AddCommand(reportGeneralLedgerCmd)
	reportCmd.AddCommand(reportCashBookCmd)
	reportCmd.AddCommand(reportBankBookCmd)
	reportCmd.AddCommand(reportMemberDuesCmd)
	reportCmd.AddCommand(reportMemberLedgerCmd)

	rootCmd.AddCommand(reportCmd)
}
