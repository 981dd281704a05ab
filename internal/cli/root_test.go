package cli

import "testing"

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "soryn" {
		t.Errorf("Command.Use = %v, want %v", cmd.Use, "soryn")
	}
	if cmd.RunE == nil {
		t.Error("root command should default to the interactive client")
	}

	for _, name := range []string{"tui", "serve", "models", "history", "ask"} {
		var found bool
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	for _, flag := range []string{"api", "data-dir"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("Persistent flag %q not defined", flag)
		}
	}
}
