package domain

// Token is the opaque sound command exchanged on the wire.
type Token string

// Sound pairs a wire token with the local file it plays.
type Sound struct {
	Token Token
	File  string
}
