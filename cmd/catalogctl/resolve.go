package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"storefront/internal/variant"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type resolveOptions struct {
	fixturePath string
	slug        string
	query       string
	pick        string
	productPath string
	asJSON      bool
}

// resolveReport is what resolve prints for one product and selection
type resolveReport struct {
	Product    string                            `json:"product"`
	Variant    *variant.Item                     `json:"variant"`
	URL        string                            `json:"url"`
	Selection  variant.Selection                 `json:"selection"`
	Options    []variant.AttributeOptions        `json:"options"`
	Navigation *variant.Navigation[variant.Item] `json:"navigation,omitempty"`
}

func newResolveCmd() *cobra.Command {
	opts := resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Preview option states and the best match for a selection",
		Example: `  catalogctl resolve --product dnc-pneumatic-cylinder --query "diameter=32&mounting=Flange"
  catalogctl resolve --product dnc-pneumatic-cylinder --query "diameter=32" --pick diameter=40`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := resolve(opts)
			if err != nil {
				return err
			}
			log.Debug("Resolved fixture selection",
				zap.String("product", opts.slug),
				zap.String("url", report.URL),
			)

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&opts.fixturePath, "fixture", "", "Fixture file (defaults to the bundled pneumatics catalog)")
	cmd.Flags().StringVar(&opts.slug, "product", "", "Product slug")
	cmd.Flags().StringVar(&opts.query, "query", "", "Current selection as a query string, e.g. diameter=40&mounting=Foot")
	cmd.Flags().StringVar(&opts.pick, "pick", "", "Option click to resolve, as key=value")
	cmd.Flags().StringVar(&opts.productPath, "product-path", "/product", "Prefix of canonical product URLs")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the report as JSON")
	cmd.MarkFlagRequired("product")

	return cmd
}

func resolve(opts resolveOptions) (*resolveReport, error) {
	fixture, err := loadFixture(opts.fixturePath)
	if err != nil {
		return nil, err
	}

	product, ok := fixture.findProduct(opts.slug)
	if !ok {
		return nil, fmt.Errorf("product %q not found in fixture", opts.slug)
	}

	query, err := url.ParseQuery(strings.TrimPrefix(opts.query, "?"))
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	schema := variant.Normalize(product.VariantConfig)
	items := product.items()
	active, ok := variant.ResolveActive(items, variant.SelectionFromQuery(schema, query))
	if !ok {
		return nil, fmt.Errorf("product %q has no variants", opts.slug)
	}

	resolver := variant.NewResolver(schema, items, variant.DeriveSelection(schema, active.Attributes, query))
	productURL := strings.TrimRight(opts.productPath, "/") + "/" + url.PathEscape(product.Slug)

	report := &resolveReport{
		Product:   product.Slug,
		Variant:   &active,
		URL:       variant.BuildURL(productURL, active.Attributes, schema),
		Selection: resolver.Selection(),
		Options:   resolver.OptionStates(),
	}

	if opts.pick != "" {
		key, value, found := strings.Cut(opts.pick, "=")
		if !found || key == "" || value == "" {
			return nil, fmt.Errorf("--pick must look like key=value, got %q", opts.pick)
		}
		if _, ok := schema.Lookup(key); !ok {
			return nil, fmt.Errorf("product %q has no attribute %q", opts.slug, key)
		}
		nav := resolver.Navigate(productURL, key, value)
		report.Navigation = &nav
	}

	return report, nil
}

func printReport(out io.Writer, report *resolveReport) error {
	fmt.Fprintf(out, "product:  %s\nvariant:  %s\nurl:      %s\n\n", report.Product, report.Variant.ID, report.URL)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTRIBUTE\tOPTION\tSTATE")
	for _, group := range report.Options {
		for _, opt := range group.Options {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", group.Key, opt.Value, opt.State)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if nav := report.Navigation; nav != nil {
		if nav.Resolved {
			fmt.Fprintf(out, "\npick -> %s (%s)\n", nav.URL, nav.Variant.ID)
		} else {
			fmt.Fprintf(out, "\npick -> %s (no orderable match)\n", nav.URL)
		}
	}
	return nil
}
