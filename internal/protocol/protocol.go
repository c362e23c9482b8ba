// Package protocol holds the wire vocabulary shared by the speaker server and
// client: handshake statuses, how a room is carried in the connection URL, and
// the transport indirection both sides drive.
//
// Handshake, in order:
//
//	client dials  <server_uri>/<room>
//	client sends  <secret>
//	server sends  "0" | "403" | "404"
//
// After "0" every text frame in either direction is a sound token.
package protocol

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dkeye/Speaker/internal/domain"
)

const (
	StatusOK          = "0"
	StatusForbidden   = "403"
	StatusUnknownRoom = "404"

	DefaultHandshakeTimeout = 5 * time.Second
)

var (
	ErrHandshakeTimeout = errors.New("handshake timeout")
	ErrInvalidServerURI = errors.New("invalid server uri")
)

// RejectedError is returned to a client when the server answers the
// handshake with anything but StatusOK.
type RejectedError struct {
	Status string
}

func (e *RejectedError) Error() string {
	switch e.Status {
	case StatusUnknownRoom:
		return "handshake rejected: unknown room"
	case StatusForbidden:
		return "handshake rejected: invalid secret"
	default:
		return fmt.Sprintf("handshake rejected: status %q", e.Status)
	}
}

// RoomURL appends the room to the server URI as its last path segment.
func RoomURL(serverURI string, room domain.RoomID) (string, error) {
	u, err := url.Parse(serverURI)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidServerURI, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("%w: scheme %q", ErrInvalidServerURI, u.Scheme)
	}
	if err := room.Validate(); err != nil {
		return "", err
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + string(room)
	u.RawPath = ""
	return u.String(), nil
}

// RoomFromPath strips basePath and the leading slash from an (unescaped)
// request path. ok is false when the path is outside basePath.
func RoomFromPath(path, basePath string) (domain.RoomID, bool) {
	basePath = strings.TrimSuffix(basePath, "/")
	if basePath != "" {
		if !strings.HasPrefix(path, basePath+"/") {
			return "", false
		}
		path = path[len(basePath):]
	}
	return domain.RoomID(strings.TrimPrefix(path, "/")), true
}
