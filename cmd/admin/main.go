package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"roomchat/backend/internal/chathub"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/storage"

	"github.com/dustin/go-humanize"
)

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("  cleanup                         remove messages past their lifetime")
	fmt.Println("  stats                           print store statistics")
	fmt.Println("  create-room <name> [description] create a room")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx := context.Background()

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer store.Close()

	hub := chathub.NewManagerService(store, cfg.ChatSettings())
	if err := hub.Restore(ctx); err != nil {
		log.Fatalf("failed to load chat document: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "cleanup":
		res, err := hub.Cleanup(ctx)
		if err != nil {
			log.Fatalf("Error running cleanup: %v", err)
		}
		fmt.Printf("Removed %s messages older than %s, %s remain.\n",
			humanize.Comma(int64(res.RemovedCount)),
			humanize.Time(res.CutoffDate),
			humanize.Comma(int64(res.RemainingCount)))
	case "stats":
		if err := printStats(hub); err != nil {
			log.Fatalf("Error printing statistics: %v", err)
		}
	case "create-room":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin create-room <name> [description]")
			os.Exit(1)
		}
		req := models.CreateRoom{Name: os.Args[2]}
		if len(os.Args) > 3 {
			req.Description = strings.Join(os.Args[3:], " ")
		}
		room, err := hub.CreateRoom(ctx, req)
		if err != nil {
			log.Fatalf("Error creating room: %v", err)
		}
		fmt.Printf("Room %s (%s) has been created.\n", room.Name, room.ID)
	default:
		fmt.Println("Unknown command")
		usage()
		os.Exit(1)
	}
}

func printStats(hub *chathub.ManagerService) error {
	report := hub.Statistics()
	fmt.Printf("messages: %s total, %s today\n", humanize.Comma(report.TotalMessages), humanize.Comma(int64(report.TodayMessages)))
	fmt.Printf("users:    %s\n", humanize.Comma(report.TotalUsers))
	fmt.Printf("rooms:    %d (%d active in the last day)\n", report.RoomsCount, report.ActiveRooms)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		TopRooms []models.RoomActivity `json:"topRooms"`
		TopUsers []models.TopUser      `json:"topUsers"`
	}{report.TopRooms, report.TopUsers})
}
