package models

import "gorm.io/gorm"

// GameSetting rows hold the admin-editable timing and payout parameters as
// key/value pairs. Writes go through the config store, which validates the
// whole set before persisting.
type GameSetting struct {
	gorm.Model

	Key         string `gorm:"uniqueIndex;size:64" json:"key"`
	Value       string `gorm:"size:255" json:"value"`
	Description string `gorm:"size:255" json:"description"`
}
