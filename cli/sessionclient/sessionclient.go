// Executable device-link test client.
package main

import (
	"github.com/Hu-Wenqiang/session-android-service/cli"
	"github.com/Hu-Wenqiang/session-android-service/cli/sessionclient/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
