package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/dkeye/Eden/internal/domain"
	"github.com/dkeye/Eden/internal/tui"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "party server base url")
	room := flag.String("party", "", "party (room) id to open")
	member := flag.String("member", "", "member id to log in as; empty browses as a guest")
	verbose := flag.BoolP("verbose", "v", false, "log to stderr")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.Disabled)
	if *verbose {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *room == "" {
		fmt.Fprintln(os.Stderr, "--party is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*server, domain.RoomID(*room), *member); err != nil {
		fmt.Fprintln(os.Stderr, "partyctl:", err)
		os.Exit(1)
	}
}

func run(server string, room domain.RoomID, member string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := tui.NewClient(server)
	if err != nil {
		return err
	}
	if member != "" {
		id, err := domain.ParseMemberID(member)
		if err != nil {
			return err
		}
		if _, err := client.Login(ctx, id); err != nil {
			return err
		}
	}
	conn, err := client.Open(ctx, room)
	if err != nil {
		return err
	}
	defer conn.Close()

	model := tui.NewModel(conn)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return model.Err()
}
