package server

import (
	"strconv"

	"github.com/tomz197/whackamole/internal/game"
)

// BroadcastStore wraps a store and publishes best-score writes to the hub,
// so every session's best display follows the shared record.
type BroadcastStore struct {
	game.Store
	Hub      *Hub
	ClientID int
}

// Ensure BroadcastStore satisfies game.Store.
var _ game.Store = (*BroadcastStore)(nil)

// Set stores value and announces it when key is the best score.
func (s *BroadcastStore) Set(key, value string) error {
	if err := s.Store.Set(key, value); err != nil {
		return err
	}
	if key == game.BestScoreKey {
		if best, err := strconv.Atoi(value); err == nil {
			s.Hub.PublishBest(s.ClientID, best)
		}
	}
	return nil
}
