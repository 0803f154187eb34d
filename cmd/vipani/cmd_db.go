package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/vipani/config"
	"github.com/shashiranjanraj/vipani/database/seeders"
	"github.com/shashiranjanraj/vipani/pkg/search"
)

// vipani index:ensure — create the search index with its mapping if absent.
var indexEnsureCmd = &cobra.Command{
	Use:   "index:ensure",
	Short: "Create the Elasticsearch product index and mapping if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := search.New(search.Config{
			Addresses: []string{config.ElasticAddr()},
			Username:  config.ElasticUsername(),
			Password:  config.ElasticPassword(),
			Index:     config.ElasticIndex(),
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := idx.EnsureSchema(ctx); err != nil {
			return err
		}
		fmt.Printf("✅  Index ready: %s\n", idx.Name())
		return nil
	},
}

// vipani seed — run all registered database seeders.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI()))
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer client.Disconnect(context.Background())

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return fmt.Errorf("ping mongo: %w", err)
		}

		if err := seeders.Run(ctx, client.Database(config.MongoDatabase())); err != nil {
			return err
		}
		fmt.Println("✅  Seeding complete.")
		return nil
	},
}
