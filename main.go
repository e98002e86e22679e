package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"estoque/internal/config"
	"estoque/internal/database"
	"estoque/internal/logger"
	"estoque/internal/middleware"
	"estoque/internal/models"
	"estoque/internal/repositories"
	"estoque/internal/server"
	"estoque/internal/services"
	"estoque/internal/validation"
	"estoque/pkg/rabbitmq"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "estoque",
		Short:        "Inventory product service",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), eventsCmd())
	return root
}

// boot loads configuration and initialises logging.
func boot() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := boot()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the produto table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := boot()
			if err != nil {
				return err
			}
			if cfg.DBDriver == "memory" {
				return fmt.Errorf("migrate: nothing to migrate for DB_DRIVER=memory")
			}

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.DBDriver).Msg("migration complete")

			if seed {
				seedProducts(cmd.Context(), repositories.NewGORMProductRepository(db))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "insert sample products after migrating")
	return cmd
}

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Consume and log product events from RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := boot()
			if err != nil {
				return err
			}
			if cfg.RabbitMQURL == "" {
				return fmt.Errorf("events: RABBITMQ_URL is not set")
			}

			mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
			if err != nil {
				return err
			}
			defer mqClient.Close()

			done, err := mqClient.ConsumeProductEvents(logProductEvent)
			if err != nil {
				return err
			}
			log.Info().Str("queue", rabbitmq.Queue).Msg("waiting for product events, press CTRL+C to exit")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case <-done:
				log.Warn().Msg("product event stream closed")
			}
			return nil
		},
	}
}

func logProductEvent(msg amqp.Delivery) error {
	var event services.ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("decode product event: %w", err)
	}
	log.Info().
		Str("event_id", event.ID).
		Str("type", event.Type).
		Uint("product_id", event.ProductID).
		Time("occurred_at", event.OccurredAt).
		Msg("product event")
	return nil
}

func serve(cfg *config.Config) error {
	var (
		db          *gorm.DB
		productRepo repositories.ProductRepository
	)
	if cfg.DBDriver == "memory" {
		productRepo = repositories.NewMockProductRepository()
		seedProducts(context.Background(), productRepo)
	} else {
		var err error
		db, err = database.Open(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if cfg.DBAutoMigrate {
			if err := database.Migrate(db); err != nil {
				return err
			}
		}
		productRepo = repositories.NewGORMProductRepository(db)
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		log.Info().Msg("RABBITMQ_URL not set, product events disabled")
	}

	app := server.New(server.Deps{
		ProductService: services.NewProductService(productRepo, publisher),
		Validator:      validation.New(),
		DB:             db,
		Metrics:        middleware.NewMetrics(),
		AccessLog:      true,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Str("driver", cfg.DBDriver).Msg("starting server")
		errCh <- app.Listen(cfg.AppPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}

// seedProducts populates the product repository with some initial data.
func seedProducts(ctx context.Context, repo repositories.ProductRepository) {
	products := []models.Product{
		{Name: "Caneta Azul", Description: "Caneta esferográfica azul", Price: 2.50, StockQuantity: 100},
		{Name: "Caderno", Description: "Caderno universitário 10 matérias", Price: 24.90, StockQuantity: 40},
		{Name: "Borracha", Description: "Borracha branca macia", Price: 1.20, StockQuantity: 250},
	}

	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			log.Error().Err(err).Str("nome", products[i].Name).Msg("error seeding product")
			continue
		}
		log.Info().Str("nome", products[i].Name).Uint("id", products[i].ID).Msg("seeded product")
	}
}
