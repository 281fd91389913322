package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"

	"ecostore/internal/domain"
	"ecostore/internal/storefront"

	"github.com/spf13/cobra"
)

func newProductsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List, search and edit products",
	}
	cmd.AddCommand(
		newProductsListCommand(a),
		newProductsSearchCommand(a),
		newProductsGetCommand(a),
		newProductsCreateCommand(a),
		newProductsUpdateCommand(a),
		newProductsDeleteCommand(a),
	)
	return cmd
}

func newProductsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.FetchProducts(cmd.Context()); err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), a.store.Products())
		},
	}
}

func newProductsSearchCommand(a *app) *cobra.Command {
	var query, category string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search products by text and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.SearchProducts(cmd.Context(), query, category); err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), a.store.Products())
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "text matched against name and description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "exact category")
	return cmd
}

func newProductsGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			product, err := a.api.GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			printProduct(cmd.OutOrStdout(), product)
			return nil
		},
	}
}

// productFlags binds the six editable fields to command flags.
type productFlags struct {
	fields domain.ProductFields
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fields.Name, "name", "", "product name")
	cmd.Flags().StringVar(&f.fields.Description, "description", "", "product description")
	cmd.Flags().Float64Var(&f.fields.Price, "price", 0, "unit price")
	cmd.Flags().StringVar(&f.fields.Image, "image", "", "image URL")
	cmd.Flags().StringVar(&f.fields.Category, "category", "", "category")
	cmd.Flags().IntVar(&f.fields.Stock, "stock", 0, "units in stock")
}

// overlay copies the flags the user set onto base.
func (f *productFlags) overlay(cmd *cobra.Command, base domain.ProductFields) domain.ProductFields {
	changed := cmd.Flags().Changed
	if changed("name") {
		base.Name = f.fields.Name
	}
	if changed("description") {
		base.Description = f.fields.Description
	}
	if changed("price") {
		base.Price = f.fields.Price
	}
	if changed("image") {
		base.Image = f.fields.Image
	}
	if changed("category") {
		base.Category = f.fields.Category
	}
	if changed("stock") {
		base.Stock = f.fields.Stock
	}
	return base
}

// checkFields runs the server-side rules locally so obvious mistakes do not
// cost a round trip.
func checkFields(fields domain.ProductFields) (domain.ProductFields, error) {
	in := domain.InputFromFields(fields)
	if err := domain.ValidateProduct(in).Err(); err != nil {
		return fields, err
	}
	return domain.SanitizeProduct(in), nil
}

func newProductsCreateCommand(a *app) *cobra.Command {
	flags := &productFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := checkFields(flags.fields)
			if err != nil {
				return err
			}
			product, err := a.store.AddProduct(cmd.Context(), fields)
			if err != nil {
				return err
			}
			printProduct(cmd.OutOrStdout(), product)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newProductsUpdateCommand(a *app) *cobra.Command {
	flags := &productFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a product's fields; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			current, err := a.api.GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}

			fields, err := checkFields(flags.overlay(cmd, current.Fields()))
			if err != nil {
				return err
			}
			product, err := a.store.UpdateProduct(cmd.Context(), id, fields)
			if err != nil {
				return err
			}
			printProduct(cmd.OutOrStdout(), product)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newProductsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return a.store.DeleteProduct(cmd.Context(), id)
		},
	}
}

func newCategoriesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with their product counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.api.Categories(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tPRODUCTS")
			for _, c := range categories {
				fmt.Fprintf(w, "%s\t%d\n", c.Name, c.ProductCount)
			}
			return w.Flush()
		},
	}
}

var errInvalidID = errors.New("product id must be a positive integer")

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, raw)
	}
	return id, nil
}

func printProducts(out io.Writer, products []domain.Product) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Category, p.Price, p.Stock)
	}
	return w.Flush()
}

func printProduct(out io.Writer, p *domain.Product) {
	fmt.Fprintf(out, "ID:          %d\n", p.ID)
	fmt.Fprintf(out, "Name:        %s\n", p.Name)
	fmt.Fprintf(out, "Description: %s\n", p.Description)
	fmt.Fprintf(out, "Price:       %.2f\n", p.Price)
	fmt.Fprintf(out, "Image:       %s\n", p.Image)
	fmt.Fprintf(out, "Category:    %s\n", p.Category)
	fmt.Fprintf(out, "Stock:       %d\n", p.Stock)
}

// describeError shortens the exit message for missing products. Other 404s,
// such as an unknown route behind a wrong --api-url, keep the full error.
func describeError(err error) string {
	var apiErr *storefront.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound && apiErr.Message == "Product not found" {
		return "product not found"
	}
	return err.Error()
}
