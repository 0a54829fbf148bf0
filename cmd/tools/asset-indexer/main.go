// cmd/tools/asset-indexer/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"eam-assistant/internal/assets"
	"eam-assistant/internal/common/config"
	"eam-assistant/internal/common/database"
	"eam-assistant/internal/common/logger"
)

func main() {
	createCmd := flag.NewFlagSet("create-index", flag.ExitOnError)
	loadCmd := flag.NewFlagSet("load", flag.ExitOnError)
	searchCmd := flag.NewFlagSet("search", flag.ExitOnError)

	var es config.ElasticsearchConfig
	for _, fs := range []*flag.FlagSet{createCmd, loadCmd, searchCmd} {
		fs.StringVar(&es.URL, "url", envOr("ES_URL", "http://localhost:9200"), "Elasticsearch URL")
		fs.StringVar(&es.Index, "index", envOr("ES_INDEX", "assets_index"), "Asset index name")
		fs.StringVar(&es.Username, "username", os.Getenv("ES_USERNAME"), "Elasticsearch username")
		fs.StringVar(&es.Password, "password", os.Getenv("ES_PASSWORD"), "Elasticsearch password")
	}

	recreate := createCmd.Bool("recreate", false, "Drop the index first if it exists")

	file := loadCmd.String("file", "", "JSON file holding a list of asset records")
	createFirst := loadCmd.Bool("create", true, "Create the index when it does not exist")

	query := searchCmd.String("q", "", "Asset description to match")
	attribute := searchCmd.String("attribute", "", "Attribute key (e.g. state, department)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	log := logger.NewStructured(envOr("LOG_LEVEL", "info"), "console")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "create-index":
		createCmd.Parse(os.Args[2:])
		indexer := assets.NewIndexer(connect(es).Client, es.Index, log)
		created, err := indexer.CreateIndex(ctx, *recreate)
		if err != nil {
			fmt.Printf("Error creating index: %v\n", err)
			os.Exit(1)
		}
		if created {
			fmt.Printf("Created index: %s\n", es.Index)
		} else {
			fmt.Printf("Index already exists: %s\n", es.Index)
		}

	case "load":
		loadCmd.Parse(os.Args[2:])
		if *file == "" {
			fmt.Println("Error: file is required for load.")
			loadCmd.Usage()
			os.Exit(1)
		}
		f, err := os.Open(*file)
		if err != nil {
			fmt.Printf("Error opening %s: %v\n", *file, err)
			os.Exit(1)
		}
		defer f.Close()

		records, err := assets.ReadRecords(f)
		if err != nil {
			fmt.Printf("Error reading records: %v\n", err)
			os.Exit(1)
		}

		indexer := assets.NewIndexer(connect(es).Client, es.Index, log)
		if *createFirst {
			if _, err := indexer.CreateIndex(ctx, false); err != nil {
				fmt.Printf("Error creating index: %v\n", err)
				os.Exit(1)
			}
		}
		stats, err := indexer.Load(ctx, records)
		if err != nil {
			fmt.Printf("Error loading records: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Read %d, skipped %d, indexed %d, failed %d\n", stats.Read, stats.Skipped, stats.Indexed, stats.Failed)
		if stats.Failed > 0 {
			os.Exit(1)
		}

	case "search":
		searchCmd.Parse(os.Args[2:])
		if *query == "" || *attribute == "" {
			fmt.Println("Error: q and attribute are required for search.")
			searchCmd.Usage()
			os.Exit(1)
		}
		searcher := assets.NewSearcher(connect(es).Client, assets.SearchConfig{Index: es.Index}, nil, log)
		values, err := searcher.FuzzySearch(ctx, *query, *attribute)
		if err != nil {
			fmt.Printf("Error searching: %v\n", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(values, "", "  ")
		fmt.Println(string(out))

	default:
		help()
		os.Exit(1)
	}
}

func connect(cfg config.ElasticsearchConfig) *database.ElasticsearchClient {
	client, err := database.NewElasticsearch(cfg)
	if err != nil {
		fmt.Printf("Error creating Elasticsearch client: %v\n", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		fmt.Printf("Error connecting to Elasticsearch at %s: %v\n", cfg.URL, err)
		os.Exit(1)
	}
	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func help() {
	fmt.Println("Usage: asset-indexer <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  create-index  Create the asset index (-recreate drops it first)")
	fmt.Println("  load          Bulk index a JSON list of asset records (-file)")
	fmt.Println("  search        Print historical values for an attribute (-q, -attribute)")
}
