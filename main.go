package main

import (
	"embed"

	"video-compressor/internal/bootstrap"
	applog "video-compressor/internal/log"
)

//go:embed frontend/index.html frontend/wailsjs
var appAssets embed.FS

func main() {
	app, err := bootstrap.NewWithAssets(appAssets)
	if err != nil {
		applog.Base().Fatal().Err(err).Msg("bootstrap app")
	}

	if err := app.Run(); err != nil {
		applog.Base().Fatal().Err(err).Msg("run app")
	}
}
