// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Tokenizer for one command line.

package protocol

import (
	"strconv"
	"strings"
)

// Kind enumerates the recognized commands.
type Kind uint8

const (
	Unrecognized Kind = iota
	Output
	Increment
	Decrement
)

var kindNames = [...]string{
	Unrecognized: "unrecognized",
	Output:       "OUTPUT",
	Increment:    "INCR",
	Decrement:    "DECR",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Command is one parsed line.
type Command struct {
	Kind  Kind
	Delta int64 // INCR/DECR argument
}

// Parse interprets a line with its terminator already stripped. Matching is
// exact and case-sensitive; anything malformed yields Unrecognized.
func Parse(line string) Command {
	if line == "OUTPUT" {
		return Command{Kind: Output}
	}
	verb, arg, ok := strings.Cut(line, " ")
	if !ok {
		return Command{}
	}
	var kind Kind
	switch verb {
	case "INCR":
		kind = Increment
	case "DECR":
		kind = Decrement
	default:
		return Command{}
	}
	delta, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return Command{}
	}
	return Command{Kind: kind, Delta: delta}
}
