package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/addressbook/internal/address"
)

func lookupCmd() *cobra.Command {
	var (
		serviceURL  string
		postcode    string
		houseNumber string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Query the lookup service and print the candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := address.NewClient(address.ClientConfig{BaseURL: serviceURL, Timeout: timeout})
			if err != nil {
				return err
			}

			addrs, err := client.Lookup(cmd.Context(), postcode, houseNumber)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			candidates := address.NewCandidates(addrs)
			if len(candidates) == 0 {
				fmt.Fprintln(out, "no addresses found")
				return nil
			}
			for _, c := range candidates {
				fmt.Fprintf(out, "%s\t%s\n", c.ID, address.Format(c.Address))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serviceURL, "url", "http://localhost:3001", "lookup service base URL")
	cmd.Flags().StringVar(&postcode, "postcode", "", "postcode to search")
	cmd.Flags().StringVar(&houseNumber, "number", "", "house number to search")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	cmd.MarkFlagRequired("postcode")

	return cmd
}
