// Package token encodes continuation tokens: opaque strings binding the user
// allowed to act on an interactive control, the command to run, and whether
// the control is still live. Tokens are obscured, not signed.
package token

import (
	"encoding/base64"
	"errors"
	"strings"
)

// MaxLength is the platform limit for component custom IDs.
const MaxLength = 100

const (
	sep = "_"
	yes = "yes"
	no  = "no"
)

// ErrTooLong is returned when an encoded token would not fit in a custom ID.
var ErrTooLong = errors.New("continuation token exceeds custom id limit")

// ErrInvalidAuthor is returned for author ids that would not survive a round
// trip because they contain the field separator.
var ErrInvalidAuthor = errors.New("continuation token author id contains separator")

// Token is the decoded form of a continuation token.
type Token struct {
	AuthorID    string
	CommandName string
	Proceed     bool
}

// Encode joins the fields as <author>_<command>[_yes|_no] and base64 encodes
// the result. The flag is left out when it is the default and the command
// name cannot be confused with it.
func Encode(t Token) (string, error) {
	if strings.Contains(t.AuthorID, sep) {
		return "", ErrInvalidAuthor
	}
	raw := t.AuthorID + sep + t.CommandName
	switch {
	case !t.Proceed:
		raw += sep + no
	case strings.Contains(t.CommandName, sep):
		raw += sep + yes
	}

	out := base64.StdEncoding.EncodeToString([]byte(raw))
	if len(out) > MaxLength {
		return "", ErrTooLong
	}
	return out, nil
}

// Decode never fails. Anything that is not a valid token yields empty fields;
// a missing flag means proceed. Only a trailing "yes" or "no" is read as the
// flag: any other trailing field stays part of the command name, so
// "42_help_maybe" names the command "help_maybe".
func Decode(s string) Token {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Token{Proceed: true}
	}

	parts := strings.Split(string(data), sep)
	t := Token{AuthorID: parts[0], Proceed: true}
	if len(parts) < 2 {
		return t
	}

	rest := parts[1:]
	if len(rest) > 1 {
		switch rest[len(rest)-1] {
		case yes:
			rest = rest[:len(rest)-1]
		case no:
			t.Proceed = false
			rest = rest[:len(rest)-1]
		}
	}
	t.CommandName = strings.Join(rest, sep)
	return t
}
