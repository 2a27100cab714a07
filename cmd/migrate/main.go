package main

import (
	"fmt"
	"os"
	"roombook/config"
	"roombook/helper"
	"roombook/shared/logger"

	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

const usage = `Usage: migrate [flags] <up|down|drop|step-up>

Applies the SQL files under migrations/postgres to the write database.

Flags:
`

func main() {
	flags := flag.NewFlagSet("migrate", flag.ExitOnError)
	path := flags.String("path", helper.DefaultMigrationPath, "directory holding the migration files")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(2)
	}

	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	action := helper.Action(flags.Arg(0))
	if !action.Valid() {
		log.Fatal().Str("action", flags.Arg(0)).Msg("Invalid direction. Use 'up', 'down', 'drop' or 'step-up'")
	}

	if err := helper.RunnerFrom(cfg, *path, action); err != nil {
		log.Fatal().Err(err).Str("action", string(action)).Msg("Migration failed")
	}
}
