package cli_test

import (
	"testing"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/require"

	"github.com/dirkpetersen/froster-go/cli"
)

func TestAttachRegistersAllSubcommands(t *testing.T) {
	app := kingpin.New("froster", "test")
	cli.NewApp().Attach(app)

	var names []string
	for _, cmd := range app.Model().Commands {
		names = append(names, cmd.Name)
	}

	require.ElementsMatch(t, []string{"archive", "restore", "delete", "index", "reset", "registry"}, names)
}

func TestRegistrySubcommandHasList(t *testing.T) {
	app := kingpin.New("froster", "test")
	cli.NewApp().Attach(app)

	for _, cmd := range app.Model().Commands {
		if cmd.Name != "registry" {
			continue
		}

		var sub []string
		for _, s := range cmd.Commands {
			sub = append(sub, s.Name)
		}

		require.Equal(t, []string{"list"}, sub)

		return
	}

	t.Fatal("registry subcommand not found")
}
