package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCartCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Price a cart of products",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <id>...",
		Short: "Add products by id (repeat an id for more units) and print the cart",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.FetchProducts(cmd.Context()); err != nil {
				return err
			}

			byID := make(map[int64]int)
			products := a.store.Products()
			for i, p := range products {
				byID[p.ID] = i
			}

			for _, raw := range args {
				id, err := parseProductID(raw)
				if err != nil {
					return err
				}
				i, ok := byID[id]
				if !ok {
					return fmt.Errorf("product %d not found", id)
				}
				a.store.AddToCart(products[i])
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
			for _, item := range a.store.Cart() {
				fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%s\n",
					item.ID, item.Name, item.Quantity, item.Price, item.Subtotal().StringFixed(2))
			}
			fmt.Fprintf(w, "\t\t%d\t\t%.2f\n", a.store.CartCount(), a.store.CartTotal())
			return w.Flush()
		},
	})
	return cmd
}
