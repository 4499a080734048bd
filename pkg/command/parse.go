// Package command parses the form-encoded payloads of Slack slash commands
// into an envelope of request fields and an enumerated command.
package command

import (
	"fmt"
	"strings"
)

const (
	pairSep  = "&"
	valueSep = "="
	tokenSep = "+"
)

// Kind is the enumerated name of a slash command.
type Kind int

const (
	Unknown Kind = iota
	Ping
	Help
	List
	Open
	Close
)

var kinds = map[string]Kind{
	"ping":  Ping,
	"help":  Help,
	"list":  List,
	"open":  Open,
	"close": Close,
}

func (k Kind) String() string {
	switch k {
	case Ping:
		return "ping"
	case Help:
		return "help"
	case List:
		return "list"
	case Open:
		return "open"
	case Close:
		return "close"
	default:
		return "unknown"
	}
}

// FormatError reports a form pair that isn't a single "key=value".
type FormatError struct {
	Pair string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed form pair %q", e.Pair)
}

// Envelope holds the raw (still URL-encoded) fields of a slash command request.
type Envelope map[string]string

func (e Envelope) Token() string       { return e["token"] }
func (e Envelope) UserName() string    { return e["user_name"] }
func (e Envelope) ChannelName() string { return e["channel_name"] }
func (e Envelope) Text() string        { return e["text"] }

// Request is a parsed slash command.
type Request struct {
	Envelope Envelope
	Kind     Kind
	// Tokens is the whole command text: the prefix, the command name, and then the arguments.
	Tokens []string
	Args   []string
}

// ParseForm splits a form-encoded string into its fields. Values are not
// URL-decoded, and every pair must contain exactly one "=" separator.
func ParseForm(raw string) (Envelope, error) {
	env := Envelope{}
	for _, pair := range strings.Split(raw, pairSep) {
		kv := strings.Split(pair, valueSep)
		if len(kv) != 2 {
			return nil, &FormatError{Pair: pair}
		}
		env[kv[0]] = kv[1]
	}
	return env, nil
}

// Tokenize splits the text of a slash command, where spaces are encoded as "+".
func Tokenize(text string) []string {
	return strings.Split(text, tokenSep)
}

// Parse converts a raw form-encoded slash command payload into a [Request].
// Token 0 is the fixed prefix, token 1 is the command name, and
// the rest are its positional arguments.
func Parse(raw string) (Request, error) {
	env, err := ParseForm(raw)
	if err != nil {
		return Request{}, err
	}

	r := Request{Envelope: env, Tokens: Tokenize(env.Text())}
	if len(r.Tokens) > 1 {
		r.Kind = kinds[r.Tokens[1]]
		r.Args = r.Tokens[2:]
	}
	return r, nil
}

// Arg returns the i-th positional argument, or an empty string if it's missing.
func (r Request) Arg(i int) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}
	return r.Args[i]
}
