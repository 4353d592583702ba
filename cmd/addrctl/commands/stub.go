package commands

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/addressbook/internal/address"
)

func stubCmd() *cobra.Command {
	var (
		dataPath string
		addr     string
	)

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve a lookup service from a YAML data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			stub, err := address.LoadStub(dataPath, logger)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.Handle("GET "+address.LookupPath, stub)

			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				<-cmd.Context().Done()
				srv.Close()
			}()

			logger.Info("Serving lookup stub", "address", addr, "path", address.LookupPath, "addresses", stub.Len())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "addresses.yaml", "YAML file with the addresses to serve")
	cmd.Flags().StringVar(&addr, "addr", ":3001", "listen address")

	return cmd
}
