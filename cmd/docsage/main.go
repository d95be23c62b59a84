// Package main provides the docsage CLI for ingesting PDF documents and
// asking grounded questions about them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mfigueroa/docsage/internal/chunker"
	"github.com/mfigueroa/docsage/internal/digest"
	"github.com/mfigueroa/docsage/internal/docstore"
	"github.com/mfigueroa/docsage/internal/engine"
	"github.com/mfigueroa/docsage/internal/index"
	"github.com/mfigueroa/docsage/internal/llm"
	"github.com/mfigueroa/docsage/internal/rerank"
)

var rootCmd = &cobra.Command{
	Use:   "docsage",
	Short: "Grounded question answering over PDF documents",
	Long: `docsage ingests PDF documents into per-document embedding indexes and
answers questions grounded in the most relevant passages, with page citations.

Environment variables:
  OPENAI_API_KEY       OpenAI API key (required)
  DOCSAGE_DATA_DIR     Data directory (default: data)
  DOCSAGE_CHAT_MODEL   Chat model (default: gpt-4o)
  DOCSAGE_EMBED_MODEL  Embedding model (default: text-embedding-3-small)`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf-file>...",
	Short: "Register PDF files and build their embedding indexes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

var askCmd = &cobra.Command{
	Use:   "ask <doc-id> <question>...",
	Short: "Ask a question about an ingested document",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAsk,
}

var digestCmd = &cobra.Command{
	Use:   "digest <doc-id>",
	Short: "Summarize a document: key points, salient pages, entities",
	Args:  cobra.ExactArgs(1),
	RunE:  runDigest,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered documents and their index status",
	RunE:  runList,
}

var (
	askK         int
	askStrategy  string
	askMMRLambda float64
	askUseJudge  bool
)

func init() {
	askCmd.Flags().IntVar(&askK, "k", engine.DefaultK, "number of chunks to retrieve")
	askCmd.Flags().StringVar(&askStrategy, "strategy", engine.StrategyMMR, "retrieval strategy: cosine or mmr")
	askCmd.Flags().Float64Var(&askMMRLambda, "mmr-lambda", 0.3, "MMR relevance/diversity trade-off in [0,1]")
	askCmd.Flags().BoolVar(&askUseJudge, "judge", false, "rerank candidates with the relevance judge")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(listCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// components wires the engine and its collaborators from the environment.
type components struct {
	docs    *docstore.Store
	indexes *index.Store
	engine  *engine.Engine
	digests *digest.Generator
}

func newComponents() (*components, error) {
	dataDir := getEnv("DOCSAGE_DATA_DIR", "data")

	docs, err := docstore.New(filepath.Join(dataDir, "documents"))
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	indexes, err := index.NewStore(filepath.Join(dataDir, "vectors"))
	if err != nil {
		return nil, fmt.Errorf("open index store: %w", err)
	}

	client, err := llm.NewClient()
	if err != nil {
		return nil, fmt.Errorf("create OpenAI client: %w", err)
	}
	chatModel := getEnv("DOCSAGE_CHAT_MODEL", llm.DefaultChatModel)
	embedModel := getEnv("DOCSAGE_EMBED_MODEL", llm.DefaultEmbeddingModel)

	embedder := llm.NewEmbedder(client, embedModel, 0) // Use default batch size
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

	return &components{
		docs:    docs,
		indexes: indexes,
		engine:  eng,
		digests: digest.NewGenerator(client, chatModel),
	}, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	c, err := newComponents()
	if err != nil {
		return err
	}

	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}

		doc, err := c.docs.Save(filepath.Base(path), f)
		f.Close()
		if err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}

		result, err := c.engine.Ingest(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}

		fmt.Printf("Ingested %s\n", doc.Filename)
		fmt.Printf("  Doc ID: %s\n", doc.ID)
		fmt.Printf("  Pages:  %d\n", result.Pages)
		fmt.Printf("  Chunks: %d\n", result.Chunks)
	}

	fmt.Printf("\nTotal time: %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if !engine.ValidStrategy(askStrategy) {
		return fmt.Errorf("unknown strategy %q (use %s or %s)",
			askStrategy, engine.StrategyCosine, engine.StrategyMMR)
	}

	c, err := newComponents()
	if err != nil {
		return err
	}

	docID := args[0]
	question := strings.Join(args[1:], " ")

	answer, err := c.engine.Answer(ctx, docID, question, engine.Options{
		K:         askK,
		Strategy:  askStrategy,
		MMRLambda: askMMRLambda,
		UseJudge:  askUseJudge,
	})
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	fmt.Println(answer)
	return nil
}

func runDigest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	c, err := newComponents()
	if err != nil {
		return err
	}

	pages, err := c.docs.GetPages(args[0])
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	d, err := c.digests.Generate(ctx, pages)
	if err != nil {
		return fmt.Errorf("digest failed: %w", err)
	}

	fmt.Printf("Summary: %s\n", d.Summary)
	if len(d.KeyPoints) > 0 {
		fmt.Println("\nKey points:")
		for _, p := range d.KeyPoints {
			fmt.Printf("  - %s\n", p)
		}
	}
	if len(d.SalientPages) > 0 {
		fmt.Printf("\nSalient pages: %v\n", d.SalientPages)
	}
	if len(d.Entities) > 0 {
		fmt.Printf("Entities: %s\n", strings.Join(d.Entities, ", "))
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := newComponentsOffline()
	if err != nil {
		return err
	}

	docs, err := c.docs.List()
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("No documents registered.")
		return nil
	}

	for _, doc := range docs {
		status := "not indexed"
		if c.indexes.Exists(doc.ID) {
			status = "indexed"
		}
		fmt.Printf("%s  %-40s %8d bytes  %s\n", doc.ID, doc.Filename, doc.Size, status)
	}
	return nil
}

// newComponentsOffline builds only the local stores, for commands that never
// touch the providers.
func newComponentsOffline() (*components, error) {
	dataDir := getEnv("DOCSAGE_DATA_DIR", "data")

	docs, err := docstore.New(filepath.Join(dataDir, "documents"))
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	indexes, err := index.NewStore(filepath.Join(dataDir, "vectors"))
	if err != nil {
		return nil, fmt.Errorf("open index store: %w", err)
	}
	return &components{docs: docs, indexes: indexes}, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
