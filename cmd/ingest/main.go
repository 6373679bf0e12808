// One-shot pipeline run: resolve the given coordinates, ingest the current
// news batch, and print the stored set for that prefecture.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"geonews/internal/geo"
	"geonews/internal/news"
	"geonews/pkg/config"
	"geonews/pkg/database"
	"geonews/pkg/logging"
)

func main() {
	lat := flag.Float64("lat", 35.6895, "latitude")
	lon := flag.Float64("lon", 139.6917, "longitude")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dbCfg := database.DefaultConfig()
	if cfg.Database.Path != "" {
		dbCfg.Path = cfg.Database.Path
	}
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	resolver, err := geo.FromConfig(cfg.Geocoder)
	if err != nil {
		log.Fatalf("geocoder: %v", err)
	}

	pipeline := &news.Pipeline{
		Resolver:   resolver,
		Searcher:   news.NewClient(cfg.News),
		Repo:       news.NewRepo(db),
		Log:        logging.New(cfg.Logging.Level),
		MaxResults: cfg.News.MaxResults,
	}

	articles, err := pipeline.GetNewsByLocation(ctx, *lat, *lon)
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(articles); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
