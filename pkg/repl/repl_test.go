package repl_test

import (
	"strings"
	"testing"

	"arenadb/pkg/repl"

	"github.com/google/uuid"
)

// newEchoRepl returns a REPL with a single command echoing its payload.
func newEchoRepl() *repl.REPL {
	r := repl.NewRepl()
	r.AddCommand("echo", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return payload, nil
	}, "Echo the payload. usage: echo <anything>")
	return r
}

func TestAddCommand(t *testing.T) {
	t.Parallel()
	r := newEchoRepl()
	if len(r.GetCommands()) != 1 {
		t.Errorf("Expected 1 registered command, got %d", len(r.GetCommands()))
	}
	if _, ok := r.GetHelp()["echo"]; !ok {
		t.Error("Expected a help string for the echo command")
	}

	// The help metacommand's trigger cannot be claimed.
	r.AddCommand(repl.TriggerHelpMetacommand, func(string, *repl.REPLConfig) (string, error) {
		return "", nil
	}, "should not register")
	if _, ok := r.GetCommands()[repl.TriggerHelpMetacommand]; ok {
		t.Error("Expected the help metacommand trigger to stay reserved")
	}
}

func TestCombineRepls(t *testing.T) {
	t.Parallel()
	combined, err := repl.CombineRepls([]*repl.REPL{newEchoRepl()})
	if err != nil {
		t.Fatal("Failed to combine repls:", err)
	}
	if len(combined.GetCommands()) != 1 {
		t.Errorf("Expected 1 command after combining, got %d", len(combined.GetCommands()))
	}

	_, err = repl.CombineRepls([]*repl.REPL{newEchoRepl(), newEchoRepl()})
	if err != repl.ErrOverlappingCommands {
		t.Errorf("Expected ErrOverlappingCommands, got %v", err)
	}

	empty, err := repl.CombineRepls(nil)
	if err != nil || len(empty.GetCommands()) != 0 {
		t.Errorf("Expected an empty REPL from no inputs, got %d commands (err %v)", len(empty.GetCommands()), err)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()
	r := newEchoRepl()

	input := strings.NewReader("echo hello\nbogus\n")
	var output strings.Builder
	r.Run(uuid.New(), "> ", input, &output)

	got := output.String()
	if !strings.Contains(got, "echo hello") {
		t.Errorf("Expected echoed payload in output, got %q", got)
	}
	if !strings.Contains(got, repl.ErrorPrependStr+repl.ErrCommandNotFound.Error()) {
		t.Errorf("Expected a command-not-found error in output, got %q", got)
	}
}
