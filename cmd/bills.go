package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gharmitra/societyledger/internal/client"
	"github.com/gharmitra/societyledger/internal/ledger"
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Generate and inspect maintenance bills",
}

var (
	billsMonth int
	billsYear  int
)

var billsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate bills for a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		result, err := c.GenerateBills(context.Background(), billsMonth, billsYear)
		if err != nil {
			return err
		}
		fmt.Printf("Generated %d bills totalling %s for %04d-%02d.\n",
			result.TotalBillsGenerated, result.TotalAmount.StringFixed(2), billsYear, billsMonth)
		return nil
	},
}

var billsListFlat string

var billsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bills",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		bills, err := c.ListBills(context.Background(), billsMonth, billsYear, billsListFlat)
		if err != nil {
			return err
		}
		if len(bills) == 0 {
			fmt.Println("No bills found.")
			return nil
		}

		fmt.Printf("%-8s %7s %12s %-10s\n", "FLAT", "PERIOD", "AMOUNT", "DUE")
		total := decimal.Zero
		for _, b := range bills {
			fmt.Printf("%-8s %04d-%02d %12s %-10s\n",
				b.FlatNumber, b.Year, b.Month, b.Amount.StringFixed(2), b.DueDate.Format("2006-01-02"))
			total = total.Add(b.Amount)
		}
		fmt.Printf("\nTotal: %s\n", total.StringFixed(2))
		return nil
	},
}

var billsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a month's bills so they can be regenerated",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		if err := c.DeleteBills(context.Background(), billsMonth, billsYear); err != nil {
			return err
		}
		fmt.Printf("Deleted bills for %04d-%02d.\n", billsYear, billsMonth)
		return nil
	},
}

// flats
var flatCmd = &cobra.Command{
	Use:   "flat",
	Short: "Manage flats",
}

var (
	flatNumber    string
	flatOwner     string
	flatArea      string
	flatOccupants int
)

var flatCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a flat",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		area, err := decimal.NewFromString(flatArea)
		if err != nil {
			return fmt.Errorf("invalid --area: %w", err)
		}
		flat := &ledger.Flat{
			Number:    flatNumber,
			OwnerName: flatOwner,
			AreaSqft:  area,
			Occupants: flatOccupants,
		}
		created, err := c.CreateFlat(context.Background(), flat)
		if err != nil {
			return err
		}
		fmt.Printf("Flat registered: %s (%s)\n", created.Number, created.ID)
		return nil
	},
}

var flatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List flats",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		flats, err := c.ListFlats(context.Background())
		if err != nil {
			return err
		}
		if len(flats) == 0 {
			fmt.Println("No flats found.")
			return nil
		}

		fmt.Printf("%-36s %-8s %-25s %10s %9s\n", "ID", "NUMBER", "OWNER", "AREA SQFT", "OCCUPANTS")
		for _, f := range flats {
			fmt.Printf("%-36s %-8s %-25s %10s %9d\n",
				f.ID, f.Number, f.OwnerName, f.AreaSqft.StringFixed(2), f.Occupants)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{billsGenerateCmd, billsListCmd, billsDeleteCmd} {
		c.Flags().IntVar(&billsMonth, "month", 0, "Billing month (1-12)")
		c.Flags().IntVar(&billsYear, "year", 0, "Billing year")
	}
	billsGenerateCmd.MarkFlagRequired("month")
	billsGenerateCmd.MarkFlagRequired("year")
	billsDeleteCmd.MarkFlagRequired("month")
	billsDeleteCmd.MarkFlagRequired("year")
	billsListCmd.Flags().StringVar(&billsListFlat, "flat", "", "Filter by flat ID")

	flatCreateCmd.Flags().StringVar(&flatNumber, "number", "", "Flat number, e.g. A-101")
	flatCreateCmd.Flags().StringVar(&flatOwner, "owner", "", "Owner name")
	flatCreateCmd.Flags().StringVar(&flatArea, "area", "", "Carpet area in square feet")
	flatCreateCmd.Flags().IntVar(&flatOccupants, "occupants", 0, "Number of occupants")
	flatCreateCmd.MarkFlagRequired("number")
	flatCreateCmd.MarkFlagRequired("area")

	billsCmd.AddCommand(billsGenerateCmd)
	billsCmd.AddCommand(billsListCmd)
	billsCmd.AddCommand(billsDeleteCmd)
	flatCmd.AddCommand(flatCreateCmd)
	flatCmd.AddCommand(flatListCmd)

	rootCmd.AddCommand(billsCmd)
	rootCmd.AddCommand(flatCmd)
}
