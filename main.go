package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/k64z/steamstacks/steamcommunity"
	"github.com/k64z/steamstacks/steamsession"
	"github.com/k64z/steamstacks/steamtrade"
)

func main() {
	username := os.Getenv("STEAM_USERNAME")
	password := os.Getenv("STEAM_PASSWORD")

	session, err := steamsession.New()
	if err != nil {
		slog.Error("create session", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	guardTypes, err := session.StartWithCredentials(ctx, username, password)
	if err != nil {
		slog.Error("start with credentials", "error", err)
		os.Exit(1)
	}

	if len(guardTypes) > 0 {
		fmt.Print("enter Steam Guard code: ")
		reader := bufio.NewReader(os.Stdin)
		code, _ := reader.ReadString('\n')
		code = strings.TrimSpace(code)

		if err := session.SubmitSteamGuardCode(ctx, code, guardTypes[0]); err != nil {
			slog.Error("submit steam guard code", "error", err)
			os.Exit(1)
		}
	}

	if err := session.PollAuthSessionStatus(ctx); err != nil {
		slog.Error("poll auth session status", "error", err)
		os.Exit(1)
	}

	slog.Info("logged in", "steam_id", session.SteamID)

	identitySecret, err := base64.StdEncoding.DecodeString(os.Getenv("STEAM_IDENTITY_SECRET"))
	if err != nil || len(identitySecret) == 0 {
		return
	}

	community, err := steamcommunity.New(steamcommunity.WithHTTPClient(session.HTTPClient()))
	if err != nil {
		slog.Error("create community client", "error", err)
		return
	}

	engine := steamtrade.New(session.SteamAPI(), community, identitySecret, nil,
		steamtrade.WithEventHandler(func(ev steamtrade.Event) {
			slog.Info("trade event", "kind", ev.Kind, "offer_id", ev.Offer.ID)
		}),
	)

	if err := engine.Run(ctx); err != nil {
		slog.Error("trade engine stopped", "error", err)
	}
}
