package cli

import (
	"fmt"

	"stockwise/internal/cache"
	"stockwise/internal/infra"
	"stockwise/internal/repository"
	"stockwise/internal/router"
	"stockwise/internal/seed"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// SeedOptions holds the flags of the seed command.
type SeedOptions struct {
	Products   int
	Sales      int
	Clear      bool
	ActiveOnly bool
	Seed       uint64
}

// NewSeedCommand creates the seed command, which fills the database with
// fake data.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with fake data for testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Products, "products", 20, "number of products to create")
	cmd.Flags().IntVar(&opts.Sales, "sales", 15, "number of sales to create")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete existing data first")
	cmd.Flags().BoolVar(&opts.ActiveOnly, "active-only", false, "create only active products")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for reproducible data (0 = random)")

	return cmd
}

func runSeed(cmd *cobra.Command, rootOpts *RootOptions, opts *SeedOptions) error {
	if opts.Products < 0 || opts.Sales < 0 {
		return fmt.Errorf("--products and --sales must not be negative")
	}

	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openDatabase(cfg, true)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	out := cmd.OutOrStdout()
	if opts.Clear {
		fmt.Fprintln(out, "Clearing existing data...")
		if err := infra.ClearData(db); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}

	// The API's cache may hold entries for rows being replaced, so seeding
	// drops them as it goes when Redis is configured.
	var productCache cache.ProductCache = cache.NoopProductCache{}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, seeding without cache invalidation")
	} else if rdb != nil {
		defer rdb.Close()
		productCache = cache.NewRedisProductCache(rdb, cfg.CacheTTL())
	}

	svc := router.NewServices(
		repository.NewProductRepository(db),
		repository.NewSaleRepository(db),
		repository.NewStockTransactionRepository(db),
		productCache,
		cfg.Location(),
	)

	fmt.Fprintf(out, "Products to create: %d\nSales to create: %d\n", opts.Products, opts.Sales)
	res, err := seed.New(svc.Products, svc.Stock, svc.Sales).Run(cmd.Context(), seed.Options{
		Products:   opts.Products,
		Sales:      opts.Sales,
		ActiveOnly: opts.ActiveOnly,
		Seed:       opts.Seed,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created %d products, %d sales and %d stock transactions.\n",
		res.Products, res.Sales, res.StockTransactions)
	return nil
}
