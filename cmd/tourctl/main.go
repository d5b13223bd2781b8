// Package main is the tourhub command-line client. It drives the client SDK
// against a running backend: session management, the partner listing
// workflow, the admin approval and refund workflows, and customer bookings.
package main

import (
	"cmp"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/api"
	"github.com/viettravel/tourhub/internal/client/session"
	"github.com/viettravel/tourhub/internal/client/token"
	"github.com/viettravel/tourhub/internal/client/transport"
	"github.com/viettravel/tourhub/internal/config"
	"github.com/viettravel/tourhub/internal/lifecycle/tour"
	"github.com/viettravel/tourhub/internal/logger"
)

var (
	version   string
	buildDate string
)

// printJSON renders a response for the terminal.
func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func main() {
	var (
		cmd      string
		email    string
		password string
		id       int64
		reason   string
		choice   string
		amount   float64
		showVer  bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: login | logout | tours | my-tours | pending | submit | resubmit | approve | reject | retire | book | bookings | cancel | refund-confirm | refund-reject | refund-complete")
	flag.StringVar(&email, "email", "", "login email")
	flag.StringVar(&password, "password", "", "login password")
	flag.Int64Var(&id, "id", 0, "tour or booking id the command applies to")
	flag.StringVar(&reason, "reason", "", "reason text for reject/cancel commands")
	flag.StringVar(&choice, "choice", "", "retire choice: delete | draft")
	flag.Float64Var(&amount, "amount", 0, "booking amount")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	options := config.Parse()

	if showVer {
		fmt.Printf("tourctl\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}

	tokens, err := token.Open(options.StorePath)
	if err != nil {
		log.Log.Fatal("failed to open credential store", zap.Error(err))
	}

	sess := session.New()
	sess.Hydrate(tokens.Get())

	pipeline := transport.New(options.BaseURL, tokens, log.Log,
		transport.WithInvalidateHook(func(cause error) {
			// The shell owns navigation; here that means telling the user.
			sess.SignOut()
			fmt.Fprintln(os.Stderr, "session expired, please login again:", cause)
		}),
	)
	client := api.New(pipeline, tokens, sess, log.Log)

	ctx := context.Background()

	run := func(v any, err error) {
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		if v != nil {
			printJSON(v)
		}
	}

	switch cmd {
	case "login":
		run(nil, client.Auth.Login(ctx, email, password))
		fmt.Println("logged in")
	case "logout":
		run(nil, client.Auth.Logout(ctx))
		fmt.Println("logged out")
	case "tours":
		tours, err := client.Tours.List(ctx, 1, 20)
		run(tours, err)
	case "my-tours":
		tours, err := client.Tours.ListMine(ctx)
		run(tours, err)
	case "pending":
		tours, err := client.Tours.ListPending(ctx)
		run(tours, err)
	case "submit":
		t, err := client.Tours.Get(ctx, id)
		if err == nil {
			t, err = client.Tours.Submit(ctx, t)
		}
		run(t, err)
	case "resubmit":
		t, err := client.Tours.Resubmit(ctx, id)
		run(t, err)
	case "approve":
		t, err := client.Tours.Get(ctx, id)
		if err == nil {
			t, err = client.Tours.Approve(ctx, t)
		}
		run(t, err)
	case "reject":
		t, err := client.Tours.Get(ctx, id)
		if err == nil {
			t, err = client.Tours.Reject(ctx, t, reason)
		}
		run(t, err)
	case "retire":
		t, err := client.Tours.Get(ctx, id)
		if err == nil {
			t, err = client.Tours.Retire(ctx, t, tour.RetireChoice(choice))
		}
		run(t, err)
	case "book":
		b, err := client.Bookings.Book(ctx, id, amount)
		run(b, err)
	case "bookings":
		bookings, err := client.Bookings.ListMine(ctx)
		run(bookings, err)
	case "cancel":
		bookings, err := client.Bookings.ListMine(ctx)
		if err != nil {
			run(nil, err)
		}
		for _, b := range bookings {
			if b.ID == id {
				updated, err := client.Bookings.Cancel(ctx, b, reason)
				run(updated, err)
				return
			}
		}
		run(nil, fmt.Errorf("booking %d not found", id))
	case "refund-confirm", "refund-reject", "refund-complete":
		// Refund actions always start from a fresh admin list; status fields
		// are never trusted from stale local state.
		bookings, err := client.Bookings.ListAll(ctx)
		if err != nil {
			run(nil, err)
		}
		for _, b := range bookings {
			if b.ID != id {
				continue
			}
			switch cmd {
			case "refund-confirm":
				updated, err := client.Bookings.ConfirmRefund(ctx, b)
				run(updated, err)
			case "refund-reject":
				updated, err := client.Bookings.RejectRefund(ctx, b, reason)
				run(updated, err)
			case "refund-complete":
				updated, err := client.Bookings.CompleteRefund(ctx, b)
				run(updated, err)
			}
			return
		}
		run(nil, fmt.Errorf("booking %d not found", id))
	default:
		fmt.Fprintln(os.Stderr, "unknown command; see -h for usage")
		os.Exit(2)
	}
}
