package app

import (
	"crypto/subtle"
	"fmt"

	"github.com/dkeye/Speaker/internal/domain"
)

type Verdict int

const (
	Admit Verdict = iota
	UnknownRoom
	BadSecret
)

func (v Verdict) String() string {
	switch v {
	case Admit:
		return "admit"
	case UnknownRoom:
		return "unknown_room"
	case BadSecret:
		return "bad_secret"
	default:
		return "unknown"
	}
}

// InvalidSecretPolicy decides what happens after "403" has been sent.
type InvalidSecretPolicy int

const (
	// RejectInvalidSecret closes the connection.
	RejectInvalidSecret InvalidSecretPolicy = iota
	// AdmitInvalidSecret keeps going and admits the connection anyway,
	// matching older servers that never returned after "403".
	AdmitInvalidSecret
)

func ParseInvalidSecretPolicy(s string) (InvalidSecretPolicy, error) {
	switch s {
	case "", "reject":
		return RejectInvalidSecret, nil
	case "admit":
		return AdmitInvalidSecret, nil
	default:
		return RejectInvalidSecret, fmt.Errorf("unknown invalid secret policy %q", s)
	}
}

// Authorizer checks a room id and a shared secret against the static room table.
type Authorizer struct {
	secrets   map[domain.RoomID][]string
	OnInvalid InvalidSecretPolicy
}

func NewAuthorizer(rooms []domain.Room, onInvalid InvalidSecretPolicy) *Authorizer {
	a := &Authorizer{
		secrets:   make(map[domain.RoomID][]string, len(rooms)),
		OnInvalid: onInvalid,
	}
	for _, r := range rooms {
		a.secrets[r.ID] = append(a.secrets[r.ID], r.Secrets...)
	}
	return a
}

func (a *Authorizer) KnowsRoom(id domain.RoomID) bool {
	_, ok := a.secrets[id]
	return ok
}

func (a *Authorizer) Verify(id domain.RoomID, secret string) Verdict {
	valid, ok := a.secrets[id]
	if !ok {
		return UnknownRoom
	}
	for _, s := range valid {
		if subtle.ConstantTimeCompare([]byte(s), []byte(secret)) == 1 {
			return Admit
		}
	}
	return BadSecret
}
