package main

import (
	"log"

	corecmd "github.com/zhukata/shopbot/core/cmd"
	"github.com/zhukata/shopbot/shop"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config/config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return shop.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return shop.Bootstrap(cfg.(*shop.Config))
		},
	})
	if err != nil {
		log.Fatalf("shopbot: %v", err)
	}
}
