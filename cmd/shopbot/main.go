package main

import (
	"log"

	corecmd "github.com/m3rciful/shopbot/core/cmd"
	"github.com/m3rciful/shopbot/internal/botapp"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return botapp.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return botapp.Bootstrap(cfg)
		},
	})
	if err != nil {
		log.Fatalf("shopbot: %v", err)
	}
}
