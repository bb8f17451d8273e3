package play

import (
	"gundu/cache"
	"gundu/game"

	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	ledger *game.Ledger
	cfg    *game.ConfigStore
	hub    *game.Hub
	cache  *cache.Store
}

func NewHandler(db *gorm.DB, ledger *game.Ledger, cfg *game.ConfigStore, hub *game.Hub, store *cache.Store) *Handler {
	return &Handler{db: db, ledger: ledger, cfg: cfg, hub: hub, cache: store}
}
