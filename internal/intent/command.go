// Package intent turns inbound chat messages into replies: it resolves
// the customer, serialises per phone, and routes text to the idle
// commands, the active dialog step or the fallback interpreter.
package intent

import (
	"strconv"
	"strings"
)

type CommandName string

const (
	CmdNone         CommandName = ""
	CmdBook         CommandName = "BOOK"
	CmdServices     CommandName = "SERVICES"
	CmdAppointments CommandName = "APPOINTMENTS"
	CmdCancel       CommandName = "CANCEL"
	CmdBarbers      CommandName = "BARBERS"
	CmdHours        CommandName = "HOURS"
	CmdHelp         CommandName = "HELP"
)

type Command struct {
	Name CommandName

	// Index is the service number of "BOOK <n>". HasIndex tells it apart
	// from a bare BOOK, since zero and negatives are still sent on.
	Index    int
	HasIndex bool
}

var keywords = map[string]CommandName{
	"BOOK":         CmdBook,
	"SERVICES":     CmdServices,
	"APPOINTMENTS": CmdAppointments,
	"CANCEL":       CmdCancel,
	"BARBERS":      CmdBarbers,
	"HOURS":        CmdHours,
	"HELP":         CmdHelp,
}

// Classify matches text against the idle keywords, ignoring case and
// surrounding whitespace. Anything else, including "BOOK" followed by a
// non-number, is CmdNone.
func Classify(text string) Command {
	fields := strings.Fields(strings.ToUpper(text))

	switch len(fields) {
	case 1:
		return Command{Name: keywords[fields[0]]}
	case 2:
		if fields[0] != "BOOK" {
			return Command{}
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}
		}
		return Command{Name: CmdBook, Index: n, HasIndex: true}
	}
	return Command{}
}
