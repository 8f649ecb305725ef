package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gharmitra/societyledger/internal/client"
	"github.com/gharmitra/societyledger/internal/ledger"
)

var yearCmd = &cobra.Command{
	Use:   "year",
	Short: "Manage financial years and their closing lifecycle",
}

// year create
var (
	yearCreateName  string
	yearCreateStart string
	yearCreateEnd   string
	yearCreatePrev  string
)

var yearCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a financial year",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		start, err := time.Parse("2006-01-02", yearCreateStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end, err := time.Parse("2006-01-02", yearCreateEnd)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}

		year := &ledger.FinancialYear{
			YearName:       yearCreateName,
			StartDate:      start,
			EndDate:        end,
			PreviousYearID: yearCreatePrev,
		}
		created, err := c.CreateYear(context.Background(), year)
		if err != nil {
			return err
		}

		fmt.Printf("Financial year created: %s (%s) %s to %s\n",
			created.YearName, created.ID,
			created.StartDate.Format("2006-01-02"), created.EndDate.Format("2006-01-02"))
		return nil
	},
}

// year list
var yearListCmd = &cobra.Command{
	Use:   "list",
	Short: "List financial years",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		years, err := c.ListYears(context.Background())
		if err != nil {
			return err
		}
		if len(years) == 0 {
			fmt.Println("No financial years found.")
			return nil
		}

		fmt.Printf("%-36s %-12s %-10s %-10s %-18s %-10s %s\n",
			"ID", "NAME", "START", "END", "STATUS", "OPENING", "ACTIVE")
		for _, y := range years {
			active := ""
			if y.IsActive {
				active = "yes"
			}
			fmt.Printf("%-36s %-12s %-10s %-10s %-18s %-10s %s\n",
				y.ID, y.YearName,
				y.StartDate.Format("2006-01-02"), y.EndDate.Format("2006-01-02"),
				y.Status, y.OpeningBalancesStatus, active)
		}
		return nil
	},
}

// year activate
var yearActivateCmd = &cobra.Command{
	Use:   "activate [id]",
	Short: "Make a financial year the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		year, err := c.ActivateYear(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Active financial year: %s\n", year.YearName)
		return nil
	},
}

// year provisional-close
var (
	yearCloseDate  string
	yearCloseNotes string
	yearCloseActor string
)

var yearProvisionalCloseCmd = &cobra.Command{
	Use:   "provisional-close [id]",
	Short: "Provisionally close a year and roll opening balances forward",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		var closingDate time.Time
		if yearCloseDate != "" {
			var err error
			closingDate, err = time.Parse("2006-01-02", yearCloseDate)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
		}

		summary, err := c.ProvisionalClose(context.Background(), args[0], closingDate, yearCloseNotes, yearCloseActor)
		if err != nil {
			return err
		}

		fmt.Printf("Year provisionally closed.\n")
		fmt.Printf("Cash balance:    %s\n", summary.CashBalance.StringFixed(2))
		fmt.Printf("Bank balance:    %s\n", summary.BankBalance.StringFixed(2))
		fmt.Printf("Total income:    %s\n", summary.TotalIncome.StringFixed(2))
		fmt.Printf("Total expenses:  %s\n", summary.TotalExpenses.StringFixed(2))
		fmt.Printf("Surplus/deficit: %s\n", summary.NetSurplusDeficit.StringFixed(2))
		if summary.Message != "" {
			fmt.Println(summary.Message)
		}
		return nil
	},
}

// year final-close
var (
	finalCloseAuditor    string
	finalCloseFirm       string
	finalCloseAuditDate  string
	finalCloseReportURL  string
	finalCloseApproved   bool
	finalCloseCommittee  string
	finalCloseNotes      string
	finalCloseActingUser string
)

var yearFinalCloseCmd = &cobra.Command{
	Use:   "final-close [id]",
	Short: "Permanently close an audited year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		in := ledger.FinalCloseInput{
			AuditorName:             finalCloseAuditor,
			AuditorFirm:             finalCloseFirm,
			AuditReportFileURL:      finalCloseReportURL,
			FinalStatementsApproved: finalCloseApproved,
			Notes:                   finalCloseNotes,
		}
		var err error
		if finalCloseAuditDate != "" {
			if in.AuditCompletionDate, err = time.Parse("2006-01-02", finalCloseAuditDate); err != nil {
				return fmt.Errorf("invalid --audit-date: %w", err)
			}
		}
		if finalCloseCommittee != "" {
			if in.CommitteeApprovalDate, err = time.Parse("2006-01-02", finalCloseCommittee); err != nil {
				return fmt.Errorf("invalid --committee-date: %w", err)
			}
		}

		year, err := c.FinalClose(context.Background(), args[0], in, finalCloseActingUser)
		if err != nil {
			return err
		}
		fmt.Printf("Year %s is final closed. Audited by %s.\n", year.YearName, year.AuditorName)
		return nil
	},
}

// year adjust
var (
	adjustDate    string
	adjustType    string
	adjustDesc    string
	adjustReason  string
	adjustDebits  []string
	adjustCredits []string
)

func parseAdjustmentLines(specs []string, side ledger.Side) ([]ledger.AdjustmentLine, error) {
	lines := make([]ledger.AdjustmentLine, 0, len(specs))
	for _, spec := range specs {
		code, raw, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid entry %q: want code=amount", spec)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in %q: %w", spec, err)
		}
		lines = append(lines, ledger.AdjustmentLine{AccountCode: code, Side: side, Amount: amount})
	}
	return lines, nil
}

var yearAdjustCmd = &cobra.Command{
	Use:   "adjust [id]",
	Short: "Post an adjustment entry to a provisionally closed year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		date, err := time.Parse("2006-01-02", adjustDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		debits, err := parseAdjustmentLines(adjustDebits, ledger.SideDebit)
		if err != nil {
			return err
		}
		credits, err := parseAdjustmentLines(adjustCredits, ledger.SideCredit)
		if err != nil {
			return err
		}

		result, err := c.PostAdjustment(context.Background(), args[0], &ledger.AdjustmentInput{
			EffectiveDate: date,
			Type:          ledger.AdjustmentType(adjustType),
			Description:   adjustDesc,
			Reason:        adjustReason,
			Entries:       append(debits, credits...),
		})
		if err != nil {
			return err
		}

		fmt.Printf("Adjustment %s posted as %s.\n", result.AdjustmentNumber, result.EntryNumber)
		for _, a := range result.AffectedAccounts {
			fmt.Printf("  %-6s %-30s %s %s\n", a.AccountCode, a.AccountName, a.Side, a.Adjustment.StringFixed(2))
		}
		return nil
	},
}

// year opening-balances
var yearOpeningBalancesCmd = &cobra.Command{
	Use:   "opening-balances [id]",
	Short: "Show a year's opening balances and their balance check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		list, err := c.ListOpeningBalances(context.Background(), args[0])
		if err != nil {
			return err
		}

		for _, b := range list.Balances {
			marker := ""
			if b.ManualEntry {
				marker = " (manual: " + b.ManualEntryReason + ")"
			}
			fmt.Printf("%-6s %-30s %6s %12s  %s%s\n",
				b.AccountCode, b.AccountName, b.Side, b.Amount.StringFixed(2), b.Status, marker)
		}
		s := list.Summary
		fmt.Printf("\nTotal debit:  %s\nTotal credit: %s\n", s.TotalDebit.StringFixed(2), s.TotalCredit.StringFixed(2))
		if !s.IsBalanced {
			fmt.Printf("NOT BALANCED: difference %s\n", s.Difference.StringFixed(2))
		}
		fmt.Printf("Finalized %d of %d rows.\n", s.FinalizedCount, s.FinalizedCount+s.ProvisionalCount)
		return nil
	},
}

// year reopen
var (
	reopenActor string
	reopenNotes string
)

var yearReopenCmd = &cobra.Command{
	Use:   "reopen [id]",
	Short: "Reopen a closed year (logged to the audit trail)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		year, err := c.ReopenYear(context.Background(), args[0], reopenActor, reopenNotes)
		if err != nil {
			return err
		}
		fmt.Printf("Year %s reopened.\n", year.YearName)
		return nil
	},
}

// year audit-log
var yearAuditLogCmd = &cobra.Command{
	Use:   "audit-log [id]",
	Short: "Show a year's lifecycle audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		events, err := c.YearAuditLog(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No audit events.")
			return nil
		}
		for _, e := range events {
			fmt.Printf("%s  %-20s %-15s %s\n",
				e.At.Format("2006-01-02 15:04:05"), e.Action, e.Actor, e.Notes)
		}
		return nil
	},
}

func init() {
	yearCreateCmd.Flags().StringVar(&yearCreateName, "name", "", "Year name, e.g. FY 2025-26")
	yearCreateCmd.Flags().StringVar(&yearCreateStart, "start", "", "Start date (YYYY-MM-DD)")
	yearCreateCmd.Flags().StringVar(&yearCreateEnd, "end", "", "End date (YYYY-MM-DD)")
	yearCreateCmd.Flags().StringVar(&yearCreatePrev, "previous", "", "Previous year ID")
	yearCreateCmd.MarkFlagRequired("name")
	yearCreateCmd.MarkFlagRequired("start")
	yearCreateCmd.MarkFlagRequired("end")

	yearProvisionalCloseCmd.Flags().StringVar(&yearCloseDate, "date", "", "Closing date (defaults to year end)")
	yearProvisionalCloseCmd.Flags().StringVar(&yearCloseNotes, "notes", "", "Closing notes")
	yearProvisionalCloseCmd.Flags().StringVar(&yearCloseActor, "user", "", "Acting user")
	yearProvisionalCloseCmd.MarkFlagRequired("user")

	yearFinalCloseCmd.Flags().StringVar(&finalCloseAuditor, "auditor", "", "Auditor name")
	yearFinalCloseCmd.Flags().StringVar(&finalCloseFirm, "firm", "", "Auditor firm")
	yearFinalCloseCmd.Flags().StringVar(&finalCloseAuditDate, "audit-date", "", "Audit completion date (YYYY-MM-DD)")
	yearFinalCloseCmd.Flags().StringVar(&finalCloseReportURL, "report-url", "", "Audit report file URL")
	yearFinalCloseCmd.Flags().BoolVar(&finalCloseApproved, "approved", false, "Final statements approved by the committee")
	yearFinalCloseCmd.Flags().StringVar(&finalCloseCommittee, "committee-date", "", "Committee approval date (YYYY-MM-DD)")
	yearFinalCloseCmd.Flags().StringVar(&finalCloseNotes, "notes", "", "Closing notes")
	yearFinalCloseCmd.Flags().StringVar(&finalCloseActingUser, "user", "", "Acting user")
	yearFinalCloseCmd.MarkFlagRequired("user")

	yearReopenCmd.Flags().StringVar(&reopenActor, "user", "", "Acting user")
	yearReopenCmd.Flags().StringVar(&reopenNotes, "notes", "", "Reason for reopening")
	yearReopenCmd.MarkFlagRequired("user")

	yearCmd.AddCommand(yearCreateCmd)
	yearCmd.AddCommand(yearListCmd)
	yearCmd.AddCommand(yearActivateCmd)
	yearCmd.AddCommand(yearProvisionalCloseCmd)
	yearAdjustCmd.Flags().StringVar(&adjustDate, "date", "", "Effective date (YYYY-MM-DD)")
	yearAdjustCmd.Flags().StringVar(&adjustType, "type", "other", "Adjustment type")
	yearAdjustCmd.Flags().StringVar(&adjustDesc, "description", "", "Entry description")
	yearAdjustCmd.Flags().StringVar(&adjustReason, "reason", "", "Reason for the adjustment")
	yearAdjustCmd.Flags().StringArrayVar(&adjustDebits, "debit", nil, "Debit line as code=amount (repeatable)")
	yearAdjustCmd.Flags().StringArrayVar(&adjustCredits, "credit", nil, "Credit line as code=amount (repeatable)")
	yearAdjustCmd.MarkFlagRequired("date")
	yearAdjustCmd.MarkFlagRequired("reason")

	yearCmd.AddCommand(yearFinalCloseCmd)
	yearCmd.AddCommand(yearAdjustCmd)
	yearCmd.AddCommand(yearOpeningBalancesCmd)
	yearCmd.AddCommand(yearReopenCmd)
	yearCmd.AddCommand(yearAuditLogCmd)

	rootCmd.AddCommand(yearCmd)
}
