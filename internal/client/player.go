package client

import "context"

//go:generate mockgen -source=player.go -destination=mock_player_test.go -package=client

// Player plays a local sound file. Play may block for the length of the
// sound; the session never waits for it.
type Player interface {
	Play(ctx context.Context, path string) error
}
