// File: cmd/chatclient/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/iyunix/go-bazaar-chat/internal/chatclient"
	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"github.com/iyunix/go-bazaar-chat/internal/services"
)

const help = `commands:
  /open /min /expand /close   widget controls
  /users                      list correspondents
  /to <user>                  open a conversation
  /unread                     show unread badges
  /quit                       exit
anything else is sent to the open conversation`

func main() {
	server := flag.String("server", "http://localhost:8080", "chat server base URL")
	username := flag.String("user", "", "username")
	password := flag.String("password", "", "password")
	register := flag.Bool("register", false, "create the account before logging in")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := services.NewSlogLogger(os.Stderr, "chatclient", slog.LevelWarn, false)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := chatclient.NewClient(*server, logger)
	if *register {
		if err := client.Register(ctx, *username, *password); err != nil {
			log.Fatalf("register: %v", err)
		}
	}
	if _, err := client.Authenticate(ctx, *username, *password); err != nil {
		log.Fatalf("authenticate: %v", err)
	}

	session := chatclient.NewSession(*username, client, logger)
	if err := session.LoadUnread(ctx); err != nil {
		logger.Warn("could not load unread counts", "error", err)
	}

	listener := &chatclient.Listener{
		URL:     client.SocketURL(),
		Token:   client.Token,
		Backoff: chatclient.DefaultBackoff,
		Logger:  logger,
		OnMessage: func(m domain.Message) {
			session.Receive(m)
			if session.Snapshot().View.Correspondent == m.Sender {
				printMessage(*username, m)
			} else {
				fmt.Printf("* new message from %s\n", m.Sender)
			}
		},
	}
	if err := listener.Validate(); err != nil {
		log.Fatalf("listener: %v", err)
	}
	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("listener stopped", "error", err)
		}
	}()

	fmt.Println(help)
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := handleLine(ctx, session, client, *username, line); quit {
				return
			}
		}
	}
}

func handleLine(ctx context.Context, session *chatclient.Session, client *chatclient.Client, self, line string) bool {
	line = strings.TrimSpace(line)
	command, arg, _ := strings.Cut(line, " ")

	var err error
	switch command {
	case "":
		return false
	case "/quit":
		return true
	case "/open":
		err = session.Open()
	case "/min":
		err = session.Minimize()
	case "/expand":
		err = session.Expand()
	case "/close":
		err = session.Close()
	case "/users":
		var users []string
		if users, err = client.Users(ctx); err == nil {
			unread := session.Snapshot().View.Unread
			for _, u := range users {
				fmt.Printf("  %s (%d unread)\n", u, unread[u])
			}
		}
	case "/unread":
		snap := session.Snapshot()
		fmt.Printf("%s, %d unread: %v\n", snap.State, snap.View.TotalUnread(), snap.View.Unread)
	case "/to":
		if err = session.Select(ctx, arg); err == nil {
			for _, m := range session.Snapshot().View.Messages {
				printMessage(self, m)
			}
		}
	default:
		session.SetCompose(line)
		_, err = session.Submit(ctx)
		if err != nil {
			err = fmt.Errorf("not sent, text kept: %w", err)
		}
	}
	if err != nil {
		fmt.Printf("! %v\n", err)
	}
	return false
}

func printMessage(self string, m domain.Message) {
	marker := " "
	if m.Recipient == self && !m.Read {
		marker = "*"
	}
	fmt.Printf("%s [%s] %s: %s\n", marker, m.Timestamp.Local().Format("15:04"), m.Sender, m.Content)
}
