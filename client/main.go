package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/mahaj/chat-client/pkg/auth"
	"github.com/mahaj/chat-client/pkg/chatstate"
	"github.com/mahaj/chat-client/pkg/config"
	"github.com/mahaj/chat-client/pkg/fetch"
	"github.com/mahaj/chat-client/pkg/obs"
	"github.com/mahaj/chat-client/pkg/source"
	"github.com/mahaj/chat-client/pkg/store"
)

func main() {
	username := flag.String("user", "", "username to sign in with")
	password := flag.String("pass", "", "password")
	srcKind := flag.String("source", "ws", "event source: ws (gateway) or kafka (broker tail, read-only)")
	storeKind := flag.String("store", "file", "active-chat store: file or redis")
	useCQL := flag.Bool("cql", false, "read history straight from ScyllaDB instead of the API")
	flag.Parse()

	cfg := config.Load()
	logger := obs.NewLogger(os.Stderr, cfg.Env)

	if *username == "" {
		logger.Error("missing -user")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 1. Sign in and derive the identity from the token.
	token, err := fetch.Login(ctx, cfg.APIAddr, *username, *password)
	if err != nil {
		logger.Error("login failed", "error", err)
		os.Exit(1)
	}
	sess, err := auth.NewSession(token)
	if err != nil {
		logger.Error("unusable token", "error", err)
		os.Exit(1)
	}
	self, _ := sess.CurrentHandle()
	logger.Info("signed in", "user", self)

	// 2. Collaborators and the state engine.
	api := fetch.NewClient(cfg.APIAddr, sess)

	var history chatstate.HistoryFetcher = api
	if *useCQL {
		cql, err := fetch.NewCQLHistory(cfg.ScyllaHosts, cfg.Keyspace, sess)
		if err != nil {
			logger.Error("scylla connect failed", "error", err)
			os.Exit(1)
		}
		defer cql.Close()
		history = cql
	}

	mgr := chatstate.NewManager(sess, api, history, logger)

	// 3. Restore the last-open conversation.
	var prefs store.ActiveChatStore
	switch *storeKind {
	case "redis":
		rs := store.NewRedisStore(cfg.RedisAddr, self)
		defer rs.Close()
		prefs = rs
	default:
		prefs = store.NewFileStore(cfg.StatePath)
	}
	if persisted, err := prefs.Load(); err != nil {
		logger.Warn("could not restore active chat", "error", err)
	} else {
		mgr.Initialize(persisted)
	}

	mgr.Subscribe(func(ev chatstate.Event) {
		switch ev.Kind {
		case chatstate.EventActiveChat:
			if err := prefs.Save(ev.Handle); err != nil {
				logger.Warn("could not persist active chat", "error", err)
			}
		case chatstate.EventMessage:
			latest := mgr.Latest(ev.Handle)
			if active, _ := mgr.ActiveChat(); active == ev.Handle {
				fmt.Printf("\r%s: %s\n> ", latest.Sender, latest.Content)
			} else {
				fmt.Printf("\r[%s: %d unread]\n> ", ev.Handle, mgr.Unread(ev.Handle))
			}
		case chatstate.EventTyping:
			if mgr.IsTyping(ev.Handle) {
				fmt.Printf("\r%s is typing...\n> ", ev.Handle)
			}
		}
	})

	if err := mgr.RefreshDirectory(ctx); err != nil {
		logger.Warn("directory refresh failed, continuing with empty directory", "error", err)
	}

	// 4. Attach the event source.
	var ws *source.WSSource
	done := make(chan error, 1)
	switch *srcKind {
	case "kafka":
		ks := source.NewKafkaSource(cfg.KafkaBrokers, cfg.KafkaTopic, "chat-client-"+self, self, mgr, logger)
		defer ks.Close()
		go func() { done <- ks.Run(ctx) }()
		logger.Info("tailing broker, sending disabled")
	default:
		ws, err = source.DialWS(ctx, cfg.GatewayAddr, token, self, mgr, logger)
		if err != nil {
			logger.Error("gateway connect failed", "error", err)
			os.Exit(1)
		}
		defer ws.Close()
		go func() { done <- ws.Run(ctx) }()
	}

	if active, ok := mgr.ActiveChat(); ok {
		openConversation(ctx, mgr, api, active, cfg.PageSize, logger)
	}

	// 5. REPL.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			handleLine(ctx, scanner.Text(), mgr, api, ws, cfg.PageSize, logger)
			fmt.Print("> ")
		}
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			logger.Error("event source stopped", "error", err)
		}
	case <-ctx.Done():
	}
}

func handleLine(ctx context.Context, line string, mgr *chatstate.Manager, api *fetch.Client, ws *source.WSSource, pageSize int, logger *slog.Logger) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	switch {
	case line == "/users":
		for _, u := range mgr.Users() {
			status := "offline"
			if u.Online {
				status = "online"
			}
			marker := " "
			if n := mgr.Unread(u.Username); n > 0 {
				marker = fmt.Sprintf("(%d)", n)
			}
			fmt.Printf("  %-16s %-8s %s\n", u.Username, status, marker)
		}

	case strings.HasPrefix(line, "/open "):
		peer := strings.TrimSpace(strings.TrimPrefix(line, "/open "))
		mgr.SetActive(peer)
		openConversation(ctx, mgr, api, peer, pageSize, logger)

	case line == "/read":
		if active, ok := mgr.ActiveChat(); ok {
			mgr.MarkRead(active)
			if err := api.MarkRead(ctx, active); err != nil {
				logger.Warn("server mark-read failed", "error", err)
			}
		}

	case line == "/typing":
		if active, ok := mgr.ActiveChat(); ok && ws != nil {
			if err := ws.SendTyping(active, true); err != nil {
				logger.Warn("typing signal failed", "error", err)
			}
		}

	default:
		active, ok := mgr.ActiveChat()
		if !ok {
			fmt.Println("no open conversation, use /open <user>")
			return
		}
		if ws == nil {
			fmt.Println("broker tail is read-only")
			return
		}
		if err := ws.Send(active, line); err != nil {
			logger.Warn("send failed", "error", err)
		}
	}
}

func openConversation(ctx context.Context, mgr *chatstate.Manager, api *fetch.Client, peer string, pageSize int, logger *slog.Logger) {
	if err := mgr.LoadPage(ctx, peer, 0, pageSize); err != nil {
		logger.Warn("history load failed, showing cached thread", "peer", peer, "error", err)
	}
	if err := api.MarkRead(ctx, peer); err != nil {
		logger.Warn("server mark-read failed", "error", err)
	}
	for _, msg := range mgr.Conversation(peer) {
		fmt.Printf("%s: %s\n", msg.Sender, msg.Content)
	}
	if mgr.IsTyping(peer) {
		fmt.Printf("%s is typing...\n", peer)
	}
}
