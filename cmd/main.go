package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cv-rag/internal/config"
	"cv-rag/internal/db"
	"cv-rag/internal/embedding"
	"cv-rag/internal/helper"
	"cv-rag/internal/ingest"
	"cv-rag/internal/llmservice"
	"cv-rag/internal/localdb"
	"cv-rag/internal/rag"
	"cv-rag/internal/search"
	"cv-rag/internal/server"
)

const defaultConfigPath = "./configs/config.yaml"

// chunkStore is the union of the store operations the CLI needs.
type chunkStore interface {
	search.Store
	ingest.DocumentWriter
	InitSchema(ctx context.Context) error
	Close() error
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	initSchema := flag.Bool("init", false, "Create database tables and exit")
	filePath := flag.String("file", "", "Path to a resume file to ingest")
	dirPath := flag.String("dir", "", "Path to a directory of resumes to ingest")
	query := flag.String("query", "", "Question to answer")
	serve := flag.Bool("serve", false, "Start the chat API server")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Str("store", cfg.Store).Msg("Loaded config")

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening chunk store")
	}
	defer store.Close()

	ctx := context.Background()

	switch {
	case *initSchema:
		if err := store.InitSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error initializing schema")
		}
		log.Info().Msg("Schema initialized")
	case *filePath != "":
		runIngestFile(ctx, cfg, store, *filePath)
	case *dirPath != "":
		runIngestDir(ctx, cfg, store, *dirPath)
	case *query != "":
		runQuery(ctx, cfg, store, *query)
	case *serve:
		runServe(cfg, store)
	default:
		fmt.Println("Usage:")
		fmt.Println("  -init                 create database tables")
		fmt.Println("  -file <path>          ingest one resume")
		fmt.Println("  -dir <path>           ingest a directory of resumes")
		fmt.Println("  -query '<question>'   answer a question")
		fmt.Println("  -serve                start the chat API")
	}
}

func openStore(cfg *config.Config) (chunkStore, error) {
	if cfg.Store == "local" {
		return localdb.New(&cfg.Local, cfg.RAG.EncryptionKey)
	}
	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		return nil, err
	}
	return db.NewStore(db.NewDB(sqldb, cfg.Database.Debug)), nil
}

func newProcessor(cfg *config.Config, store chunkStore) *ingest.Processor {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	return ingest.NewProcessor(store, embedder, cfg)
}

func runIngestFile(ctx context.Context, cfg *config.Config, store chunkStore, filePath string) {
	if _, err := newProcessor(cfg, store).ProcessFile(ctx, filePath); err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}
}

func runIngestDir(ctx context.Context, cfg *config.Config, store chunkStore, dirPath string) {
	if err := newProcessor(cfg, store).ProcessDirectory(ctx, dirPath); err != nil {
		log.Fatal().Err(err).Msg("Error ingesting directory")
	}
}

func newRAG(cfg *config.Config, store chunkStore) *rag.RAG {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	llm, err := llmservice.New(&cfg.InferLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing LLM")
	}
	searcher := search.NewSearcher(store, embedder)
	return rag.NewRAG(searcher, search.NewExpander(searcher), llm, cfg)
}

func runQuery(ctx context.Context, cfg *config.Config, store chunkStore, query string) {
	result, err := newRAG(cfg, store).ProcessQuery(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", result.Answer)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	helper.PrettyPrint(result.Citations)
}

func runServe(cfg *config.Config, store chunkStore) {
	if err := server.New(newRAG(cfg, store), cfg.Server.Addr).ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
