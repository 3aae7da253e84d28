package main

import (
	"fmt"
	"os"
	"taskboard/config"
	"taskboard/helper"
	"taskboard/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up|step-up|down|drop")
		os.Exit(2)
	}

	logger.InitLogger()

	cfg := config.Get()
	logger.SetLogLevel(cfg)

	if err := helper.Run(cfg, helper.Action(os.Args[1])); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
