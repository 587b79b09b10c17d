package diag

import (
	"fmt"
)

type Code uint16

const (
	// Unknown
	UnknownCode Code = 0

	// Syntax
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynExpectToken          Code = 2002
	SynModuleSyntaxInScript Code = 2003
	SynWithInModule         Code = 2004
	SynJSXNotEnabled        Code = 2005
	SynEarlyError           Code = 2006
	SynDecoratorsNotEnabled Code = 2007
	SynInvalidSyntax        Code = 2008

	// Internal
	InternalInfo  Code = 9000
	InternalError Code = 9001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		SynInfo:                 "Syntax information",
		SynUnexpectedToken:      "Unexpected token",
		SynExpectToken:          "Expected token",
		SynModuleSyntaxInScript: "Module syntax outside of a module",
		SynWithInModule:         "'with' statement in module code",
		SynJSXNotEnabled:        "JSX is not enabled",
		SynEarlyError:           "Early error",
		SynDecoratorsNotEnabled: "Decorators are not enabled",
		SynInvalidSyntax:        "Invalid syntax",
		InternalInfo:            "Internal information",
		InternalError:           "Internal error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("INT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
