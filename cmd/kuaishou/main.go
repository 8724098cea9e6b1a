package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	kuaishou "github.com/RavensCloud/kuaishou-gofun"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	mode := flag.String("mode", "", "Crawl mode: search|detail|creator|monitor (overrides config)")
	keyword := flag.String("keyword", "", "Search keyword (overrides config keywords)")
	userID := flag.String("user", "", "Look up one user's profile and videos, then exit")
	videoID := flag.String("video", "", "Fetch one video's comments, then exit")
	cookies := flag.String("cookies", "", "Cookie header string to reuse an existing session")
	limit := flag.Int("limit", 0, "Max items for --user video listing")
	logLevel := flag.String("log-level", "", "Log level: debug|info|warn|error (overrides config)")
	flag.Parse()

	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := kuaishou.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *mode != "" {
		cfg.CrawlerType = *mode
	}
	if *keyword != "" {
		cfg.SearchKeywords = []string{*keyword}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	kuaishou.SetLogLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := kuaishou.New(cfg)
	defer s.Close()

	if *cookies != "" {
		if err := s.LoginWithCookies(*cookies); err != nil {
			log.Fatalf("login with cookies: %v", err)
		}
	}

	if err := s.Start(ctx); err != nil {
		log.Fatalf("start crawler: %v", err)
	}

	// Ad-hoc single-target lookups bypass the configured flow.
	if *userID != "" {
		profile, err := s.GetUserProfile(ctx, *userID)
		if err != nil {
			log.Fatalf("get user profile: %v", err)
		}
		printProfile(profile)
		videos, err := s.GetUserVideos(ctx, *userID, *limit)
		if err != nil {
			log.Fatalf("get user videos: %v", err)
		}
		printVideos(videos)
		return
	}
	if *videoID != "" {
		comments, err := s.GetVideoComments(ctx, *videoID)
		if err != nil {
			log.Fatalf("get video comments: %v", err)
		}
		fmt.Printf("Collected %d comments for video %s\n", len(comments), *videoID)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("crawl: %v", err)
	}
}

func printProfile(p kuaishou.Profile) {
	fmt.Printf("User:      %s\n", p.Name)
	fmt.Printf("ID:        %s\n", p.ID)
	fmt.Printf("Followers: %d\n", p.FollowerCount)
	fmt.Printf("Following: %d\n", p.FollowingCount)
	fmt.Printf("Videos:    %d\n", p.VideoCount)
}

func printVideos(videos []kuaishou.Video) {
	for i, v := range videos {
		fmt.Printf("[%d] %s by %s - %s likes\n", i+1, v.ID, v.AuthorName, v.LikeCount)
		if v.Caption != "" {
			fmt.Printf("    %s\n", v.Caption)
		}
	}
	fmt.Printf("\nTotal: %d videos\n", len(videos))
}
