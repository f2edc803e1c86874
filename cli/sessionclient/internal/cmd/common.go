package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Hu-Wenqiang/session-android-service/application/client"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"
)

const configMissingUsage = `
Couldn't load the client's config-file.

To create a valid config along with a fresh identity key, run
  sessionclient init

The client looks for a file called 'config.toml' in its current
working directory. If you prefer the config-file to be named or
stored somewhere different you can specify where to look for the
config with the --config flag. For example:
  sessionclient run --config /etc/session/config.toml
`

func loadConfigOrExit(cmd *cobra.Command) *client.Config {
	config := cmd.Flag("config").Value.String()
	conf := &client.Config{}
	if err := conf.Load(config, "toml"); err != nil {
		fmt.Println(err)
		fmt.Print(configMissingUsage)
		os.Exit(-1)
	}
	return conf
}

// append "\r\n" to msg and then write to terminal in raw mode.
func writeLineInRawMode(term *terminal.Terminal, msg string, printTimestamp bool) {
	if printTimestamp {
		term.Write([]byte("<" + time.Now().Format("15:04:05.999999999") + "> "))
	}
	term.Write([]byte(msg + "\r\n"))
}
