package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/steerctl/internal/config"
	"github.com/danmuck/steerctl/internal/observability"
	"github.com/danmuck/steerctl/internal/webui"
)

func main() {
	observability.InitLogger("webctl")

	cfg := config.DefaultWebConfig()
	if len(os.Args) > 1 {
		loaded, err := config.LoadWebConfig(os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load web config")
		}
		cfg = loaded
	}

	server := webui.NewServer(cfg)
	log.Info().Str("addr", cfg.Addr).Str("webrtcd", cfg.WebrtcdAddr).Msg("steering ui started")
	if err := server.Serve(); err != nil {
		log.Fatal().Err(err).Msg("steering ui stopped")
	}
}
