// Package main provides botctl, the Botverse management CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "botctl",
	Short: "Botverse management CLI",
	Long: `CLI for managing Botverse bots and their knowledge bases.

Environment variables:
  CONFIG_PATH          Optional YAML config file
  QDRANT_HOST          Qdrant hostname (empty: in-memory store)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  HUGGINGFACE_API_KEY  HuggingFace inference API key
  OPENAI_API_KEY       OpenAI API key
  GEMINI_API_KEY       Google Gemini API key (embeddings and generation)
  GITHUB_TOKEN         GitHub token for higher rate limits (optional)`,
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
