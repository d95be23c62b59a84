// Package main provides the docsage MCP server entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mfigueroa/docsage/internal/chunker"
	"github.com/mfigueroa/docsage/internal/digest"
	"github.com/mfigueroa/docsage/internal/docstore"
	"github.com/mfigueroa/docsage/internal/engine"
	"github.com/mfigueroa/docsage/internal/feedback"
	"github.com/mfigueroa/docsage/internal/index"
	"github.com/mfigueroa/docsage/internal/llm"
	mcpserver "github.com/mfigueroa/docsage/internal/mcp"
	"github.com/mfigueroa/docsage/internal/rerank"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Configuration from environment
	dataDir := getEnv("DOCSAGE_DATA_DIR", "data")
	port := getEnv("PORT", "8080")

	// Initialize stores
	docs, err := docstore.New(filepath.Join(dataDir, "documents"))
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}
	indexes, err := index.NewStore(filepath.Join(dataDir, "vectors"))
	if err != nil {
		log.Fatalf("failed to open index store: %v", err)
	}
	feedbackStore, err := feedback.New(filepath.Join(dataDir, "feedback", "relevance.jsonl"))
	if err != nil {
		log.Fatalf("failed to open feedback store: %v", err)
	}

	// Initialize provider clients
	client, err := llm.NewClient()
	if err != nil {
		log.Fatalf("failed to create OpenAI client: %v", err)
	}
	chatModel := getEnv("DOCSAGE_CHAT_MODEL", llm.DefaultChatModel)
	embedModel := getEnv("DOCSAGE_EMBED_MODEL", llm.DefaultEmbeddingModel)
	embedBatch := getEnvInt("DOCSAGE_EMBED_BATCH", 0) // 0 = default batch size

	embedder := llm.NewEmbedder(client, embedModel, embedBatch)
	chat := llm.NewChatClient(client, chatModel)
	judge := rerank.NewJudge(chat, 0, slog.Default())

	eng := engine.New(
		docs,
		chunker.New(chunker.DefaultMaxChars, chunker.DefaultOverlap),
		embedder,
		chat,
		judge,
		indexes,
		slog.Default(),
	)

	// Create MCP server
	server := mcpserver.NewServer(&mcpserver.Config{
		Engine:    eng,
		Documents: docs,
		Indexes:   indexes,
		Digests:   digest.NewGenerator(client, chatModel),
		Feedback:  feedbackStore,
	})

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(indexes))

	// MCP HTTP endpoint (for remote client connections)
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// Landing page
	mux.HandleFunc("/", mcpserver.NewLandingHandler())

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP health endpoint in background for local testing
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting docsage MCP server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
