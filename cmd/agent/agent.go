package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"voice-agent-platform/internal/agentclient"
	"voice-agent-platform/internal/ai"
	"voice-agent-platform/internal/config"
	"voice-agent-platform/internal/logger"
	"voice-agent-platform/models"
	"voice-agent-platform/services"
)

// Text-mode agent loop. Reads user turns from stdin, grounds each one with
// knowledge base retrieval, and publishes the sources used back to the
// platform server so a frontend can show citations.
func main() {
	roomName := flag.String("room", "dev-room", "room name to publish session state under")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	chat, err := ai.NewChatClient(ctx, cfg.GeminiAPIKey, cfg.GeminiChatModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to create chat client:", err)
	}
	defer chat.Close()

	platform := agentclient.New(cfg.APIBaseURL)

	systemPrompt := platform.FetchSystemPrompt(ctx)
	if systemPrompt == "" {
		systemPrompt = services.DefaultSystemPrompt
	}

	fmt.Printf("Agent ready in room %q. Type a message and press enter.\n", *roomName)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		turn := strings.TrimSpace(scanner.Text())
		if turn == "" {
			continue
		}

		results := platform.SearchKB(ctx, turn, 4)

		contextChunks := make([]string, 0, len(results))
		sources := make([]models.SessionSource, 0, len(results))
		for _, r := range results {
			contextChunks = append(contextChunks, r.Snippet)
			sources = append(sources, models.SessionSource{
				DocID:    r.DocID,
				DocTitle: r.DocTitle,
				ChunkID:  r.ChunkID,
				Snippet:  r.Snippet,
			})
		}

		answer, err := chat.Generate(ctx, systemPrompt, turn, contextChunks)
		if err != nil {
			logger.Error("Generation failed", "error", err)
			fmt.Println("Sorry, something went wrong generating a response.")
			continue
		}

		fmt.Println(answer)

		if err := platform.PublishSessionState(ctx, *roomName, sources, answer); err != nil {
			logger.Warn("Failed to publish session state", "room", *roomName, "error", err)
		}
	}
}
