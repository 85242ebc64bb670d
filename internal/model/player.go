package model

import "time"

type Player struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	Level        int        `json:"level"`
	Experience   int        `json:"experience"`
	Credits      int64      `json:"credits"`
	Kills        int        `json:"kills"`
	IsBanned     bool       `json:"is_banned"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type InventoryItem struct {
	Category string `json:"category"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// Pilot is the progression view of a player.
type Pilot struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Level        int             `json:"level"`
	Experience   int             `json:"experience"`
	NextLevelExp int             `json:"next_level_exp"`
	Credits      int64           `json:"credits"`
	Kills        int             `json:"kills"`
	Inventory    []InventoryItem `json:"inventory"`
}

// Grant is one progression delta for a player.
type Grant struct {
	Experience int
	Credits    int64
	Kills      int
	Loot       []string
}

func (g Grant) IsZero() bool {
	return g.Experience == 0 && g.Credits == 0 && g.Kills == 0 && len(g.Loot) == 0
}
