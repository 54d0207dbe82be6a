// Package repl implements a line-oriented command shell that arenadb's
// surfaces register their commands with.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// ReplCommand handles one input line. It receives the entire payload,
// including the trigger word.
type ReplCommand func(payload string, replConfig *REPLConfig) (output string, err error)

const (
	// Trigger for the help meta-command that prints out all help strings
	TriggerHelpMetacommand = ".help"

	// String that should be prepended to any error before being sent to the output writer
	ErrorPrependStr = "ERROR: "
)

var (
	// Error for when combined REPLs share a trigger
	ErrOverlappingCommands = errors.New("found overlapping commands")

	// Error for when a sent trigger is not associated with any known commands
	ErrCommandNotFound = errors.New("command not found")
)

// REPL maps triggers to commands and their help strings.
type REPL struct {
	commands map[string]ReplCommand
	help     map[string]string
}

// REPLConfig holds per-session state handed to every command.
type REPLConfig struct {
	clientId uuid.UUID
}

// GetAddr returns the session's client id.
func (replConfig *REPLConfig) GetAddr() uuid.UUID {
	return replConfig.clientId
}

// NewRepl constructs an empty REPL with no commands registered.
func NewRepl() *REPL {
	return &REPL{
		commands: make(map[string]ReplCommand),
		help:     make(map[string]string),
	}
}

// CombineRepls merges a slice of REPLs into one.
// Errors if any two REPLs share a trigger; no REPLs yields an empty REPL.
func CombineRepls(repls []*REPL) (*REPL, error) {
	combined := NewRepl()
	for _, r := range repls {
		for trigger, action := range r.commands {
			if _, exists := combined.commands[trigger]; exists {
				return nil, ErrOverlappingCommands
			}
			combined.AddCommand(trigger, action, r.help[trigger])
		}
	}
	return combined, nil
}

// GetCommands returns the trigger-to-command map.
func (r *REPL) GetCommands() map[string]ReplCommand {
	return r.commands
}

// GetHelp returns the trigger-to-help map.
func (r *REPL) GetHelp() map[string]string {
	return r.help
}

// AddCommand registers a command and its help string under the given
// trigger, overwriting any previous command with the same trigger.
// The help metacommand's trigger cannot be taken.
func (r *REPL) AddCommand(trigger string, action ReplCommand, help string) {
	if trigger == TriggerHelpMetacommand {
		return
	}
	r.commands[trigger] = action
	r.help[trigger] = help
}

// HelpString returns all commands' help strings as one string.
func (r *REPL) HelpString() string {
	var sb strings.Builder
	for k, v := range r.help {
		sb.WriteString(fmt.Sprintf("%s: %s\n", k, v))
	}
	return sb.String()
}

// Run reads lines from input and dispatches them to registered commands
// until EOF, writing results and errors to output. Input and output default
// to stdin and stdout when nil.
func (r *REPL) Run(clientId uuid.UUID, prompt string, input io.Reader, output io.Writer) {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}

	scanner := bufio.NewScanner(input)
	replConfig := &REPLConfig{clientId: clientId}
	fmt.Fprintln(output, "Welcome to the arenadb REPL! Please type '.help' to see the list of available commands.")
	io.WriteString(output, prompt)

	for scanner.Scan() {
		payload := scanner.Text()
		fields := strings.Fields(payload)
		if len(fields) == 0 {
			io.WriteString(output, prompt)
			continue
		}
		trigger := fields[0]

		if trigger == TriggerHelpMetacommand {
			io.WriteString(output, r.HelpString())
			io.WriteString(output, prompt)
			continue
		}

		if command, exists := r.commands[trigger]; exists {
			result, err := command(payload, replConfig)
			if err != nil {
				fmt.Fprintf(output, "%s%s\n", ErrorPrependStr, err)
			} else {
				if len(result) != 0 && !strings.HasSuffix(result, "\n") {
					result = result + "\n"
				}
				io.WriteString(output, result)
			}
		} else {
			fmt.Fprintf(output, "%s%s\n", ErrorPrependStr, ErrCommandNotFound)
		}
		io.WriteString(output, prompt)
	}
	// Print an additional line if we encountered an EOF character.
	io.WriteString(output, "\n")
}
