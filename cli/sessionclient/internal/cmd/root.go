package cmd

import (
	"github.com/Hu-Wenqiang/session-android-service/cli"
)

// RootCmd represents the base "sessionclient" command when called
// without any subcommands (links, link-add, ...).
var RootCmd = cli.NewRootCommand("sessionclient",
	"Device-link directory test client in Go",
	`
 _______  _______  _______  _______  ___   _______  __    _
|       ||       ||       ||       ||   | |       ||  |  | |
|  _____||    ___||  _____||  _____||   | |   _   ||   |_| |
| |_____ |   |___ | |_____ | |_____ |   | |  | |  ||       |
|_____  ||    ___||_____  ||_____  ||   | |  |_|  ||  _    |
 _____| ||   |___  _____| | _____| ||   | |       || | |   |
|_______||_______||_______||_______||___| |_______||_|  |__|
`)

func init() {
	RootCmd.AddCommand(cli.NewVersionCommand("sessionclient"))
}
