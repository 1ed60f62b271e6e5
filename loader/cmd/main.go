package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"rag/loader/service"
	"rag/model"
	"rag/store"
	"rag/types"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	reset := flag.Bool("reset", false, "clear the vector store before ingesting")
	flag.Parse()

	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Println("OpenAI API key is missing. Please provide the API key to continue.")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := store.NewPostgresStore(ctx, postgresConnStr())
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}
	defer pool.Close()

	if *reset {
		log.Println("Clearing the database...")
		if err := pool.Clear(ctx); err != nil {
			log.Fatal("error to clear the database: ", err)
		}
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	cfg := types.LoaderConfig{
		DataDir:      envString("DATA_DIR", "data"),
		ChunkSize:    envInt("CHUNK_SIZE", 800),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 80),
		CropTop:      envFloat("CROP_TOP", 0),
		CropBottom:   envFloat("CROP_BOTTOM", 0),
	}

	log.Println("Populating database...")
	added, err := service.New(pool, model.NewOpenAIEmbedder(), cfg).Run(ctx)
	if err != nil {
		log.Fatal("ingestion failed: ", err)
	}
	fmt.Printf("Added %d new chunks to the database.\n", added)
}

func postgresConnStr() string {
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
}
