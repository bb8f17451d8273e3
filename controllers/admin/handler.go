package admin

import (
	"gundu/game"

	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	resolver *game.Resolver
	cfg      *game.ConfigStore
	ledger   *game.Ledger
}

func NewHandler(db *gorm.DB, resolver *game.Resolver, cfg *game.ConfigStore, ledger *game.Ledger) *Handler {
	return &Handler{db: db, resolver: resolver, cfg: cfg, ledger: ledger}
}
