// Package resolver turns user input into a canonical exchange code.
package resolver

import (
	"strings"

	"StockLens/internal/model"
)

// Kind tags how an input is resolved.
type Kind int

const (
	KindCompanyName Kind = iota
	KindRawCode
)

func (k Kind) String() string {
	if k == KindRawCode {
		return "code"
	}
	return "name"
}

// Input is user input classified once at the boundary.
type Input struct {
	Kind  Kind
	Value string
}

// ParseInput classifies s. Exactly six ASCII digits is a raw code; anything
// else is a company name. Surrounding whitespace is trimmed.
func ParseInput(s string) Input {
	s = strings.TrimSpace(s)
	if model.IsExchangeCode(s) {
		return Input{Kind: KindRawCode, Value: s}
	}
	return Input{Kind: KindCompanyName, Value: s}
}

func (in Input) String() string { return in.Value }
