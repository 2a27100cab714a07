package main

import (
	"context"
	"fmt"
	"os"
	"roombook/config"
	"roombook/di"
	"roombook/internal/domains/setting/model"
	"roombook/internal/domains/setting/model/dto"
	"roombook/shared/constant"
	"roombook/shared/logger"

	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

const seedActor = "seed"

func main() {
	flags := flag.NewFlagSet("seed", flag.ExitOnError)
	managerEmail := flags.String("manager-email", "", "address that receives booking requests and may log in")
	logoURL := flags.String("logo-url", "", "public URL of the logo shown on pages and emails")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: seed [--manager-email ADDRESS] [--logo-url URL]")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	values := map[string]string{
		model.KeyManagerEmail: *managerEmail,
		model.KeyLogoURL:      *logoURL,
	}

	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	settings := di.InitializeSetting()
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserEmail, seedActor)

	seeded := 0

	for _, key := range []string{model.KeyManagerEmail, model.KeyLogoURL} {
		value := values[key]
		if value == constant.Empty {
			continue
		}

		if _, err := settings.Upsert(ctx, key, dto.UpsertSettingRequest{Value: value}); err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("Failed to seed setting")
		}

		log.Info().Str("key", key).Msg("Setting seeded")

		seeded++
	}

	if seeded == 0 {
		flags.Usage()
		os.Exit(2)
	}
}
