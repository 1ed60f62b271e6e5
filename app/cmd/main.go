package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"rag/agent"
	"rag/app/api"
	"rag/app/server"
	"rag/model"
	"rag/store"

	"github.com/joho/godotenv"
)

const errorApology = "I apologize, but I encountered an error. Could you please try asking your question again?"

func init() {
	mustLoadEnvVariables()
}

func main() {
	serveAddr := flag.String("serve", "", "run the HTTP server on this address instead of the interactive chat")
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

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	newGenerator := func() *agent.Generator {
		retriever := agent.NewRetriever(
			model.NewOpenAIEmbedder(),
			pool,
			envInt("TOP_K", 5),
			envInt("MAX_CONTEXT_TOKENS", 3000),
		)
		return agent.NewGenerator(model.NewOpenAIChat(), retriever, envFloat("CONFIDENCE_THRESHOLD", 0.7))
	}

	if *serveAddr != "" {
		runServer(*serveAddr, newGenerator)
		return
	}

	runChat(ctx, newGenerator())
}

// runChat is the line-oriented session loop: one query is fully resolved
// before the next is read. "exit" ends the session.
func runChat(ctx context.Context, generator *agent.Generator) {
	fmt.Println("You can start chatting with the AI about the Constitution of Nepal 2072. Type 'exit' to stop the conversation.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			return
		}

		query := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(query, "exit") {
			return
		}
		if query == "" {
			continue
		}

		res, err := generator.Ask(ctx, query)
		if err != nil {
			fmt.Printf("An error occurred while generating the response: %v\n", err)
			fmt.Println("AI: " + errorApology)
			continue
		}
		fmt.Println("AI: " + res.Answer)
	}
}

func runServer(addr string, newGenerator func() *agent.Generator) {
	s := server.NewServer(addr, api.NewAskHandler(newGenerator))

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func postgresConnStr() string {
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
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
