package main

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/database"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd() *cobra.Command {
	var (
		fixturePath string
		migrate     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a catalog fixture through the admin service",
		Long:  "Creates categories, products and variants from a fixture. Existing slugs and SKUs are left untouched, so seeding twice is harmless.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := database.RunMigrations(db.DB().DB, log); err != nil {
					return err
				}
			}

			admin := service.NewAdminService(
				repository.NewCategoryRepository(db.DB()),
				repository.NewProductRepository(db.DB()),
				repository.NewVariantRepository(db.DB()),
			)

			stats, err := seedCatalog(cmd.Context(), admin, fixture, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories, %d products, %d variants (%d skipped)\n",
				stats.categories, stats.products, stats.variants, stats.skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&fixturePath, "fixture", "", "Fixture file (defaults to the bundled pneumatics catalog)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply migrations before seeding")
	return cmd
}

type seedStats struct {
	categories int
	products   int
	variants   int
	skipped    int
}

// seedCatalog writes the fixture through the admin service, skipping records whose slug or SKU already exists
func seedCatalog(ctx context.Context, admin service.AdminService, fixture *catalogFixture, logger *zap.Logger) (seedStats, error) {
	var stats seedStats

	existing, err := admin.ListCategories(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list categories: %w", err)
	}
	categoryIDs := make(map[string]uuid.UUID, len(existing))
	for _, c := range existing {
		categoryIDs[c.Slug] = c.ID
	}

	for _, fc := range fixture.Categories {
		category, err := admin.CreateCategory(ctx, service.CategoryInput{Name: fc.Name, Slug: fc.Slug})
		switch {
		case errors.Is(err, repository.ErrDuplicateSlug):
			stats.skipped++
		case err != nil:
			return stats, fmt.Errorf("category %s: %w", fc.Slug, err)
		default:
			stats.categories++
			categoryIDs[category.Slug] = category.ID
		}

		categoryID, ok := categoryIDs[fc.Slug]
		if !ok {
			return stats, fmt.Errorf("category %s: %w", fc.Slug, repository.ErrCategoryNotFound)
		}

		for _, fp := range fc.Products {
			created, err := seedProduct(ctx, admin, categoryID, fp, &stats)
			if err != nil {
				return stats, fmt.Errorf("product %s: %w", fp.Slug, err)
			}
			if !created {
				logger.Info("Product already seeded", zap.String("slug", fp.Slug))
			}
		}
	}

	return stats, nil
}

func seedProduct(ctx context.Context, admin service.AdminService, categoryID uuid.UUID, fp fixtureProduct, stats *seedStats) (bool, error) {
	product, err := admin.CreateProduct(ctx, service.ProductInput{
		Name:           fp.Name,
		Slug:           fp.Slug,
		CategoryID:     categoryID,
		Description:    fp.Description,
		MRP:            fp.MRP,
		SellingPrice:   fp.SellingPrice,
		VariantConfig:  fp.VariantConfig,
		Specifications: fp.Specifications,
	})
	if errors.Is(err, repository.ErrDuplicateSlug) {
		stats.skipped++
		return false, nil
	}
	if err != nil {
		return false, err
	}
	stats.products++

	for _, fv := range fp.Variants {
		_, err := admin.CreateVariant(ctx, service.VariantInput{
			ProductID:    product.ID,
			Name:         fv.Name,
			SKU:          fv.SKU,
			Attributes:   fv.Attributes,
			MRP:          fv.MRP,
			SellingPrice: fv.SellingPrice,
			Stock:        fv.Stock,
		})
		switch {
		case errors.Is(err, repository.ErrDuplicateSKU):
			stats.skipped++
		case err != nil:
			return true, fmt.Errorf("variant %s: %w", fv.SKU, err)
		default:
			stats.variants++
		}
	}
	return true, nil
}
