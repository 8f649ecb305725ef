package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gharmitra/societyledger/internal/config"
	"github.com/gharmitra/societyledger/internal/server"
	"github.com/gharmitra/societyledger/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if flagConfig != "" {
			var err error
			cfg, err = config.Load(flagConfig)
			if err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("db") {
			cfg.Database.Path = flagDB
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}

		tol, err := cfg.Tolerance()
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.Database.Path, tol)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(st, cfg.Server.Addr)
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8888", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
