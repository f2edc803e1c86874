package cmd

import (
	"log"
	"path"

	"github.com/Hu-Wenqiang/session-android-service/application"
	"github.com/Hu-Wenqiang/session-android-service/application/client"
	"github.com/Hu-Wenqiang/session-android-service/cli"
	"github.com/Hu-Wenqiang/session-android-service/crypto/sign"
	"github.com/Hu-Wenqiang/session-android-service/utils"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = cli.NewInitCommand("Session test client", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".",
		"Location of directory for storing generated files")
}

func initRunFunc(cmd *cobra.Command, args []string) {
	dir := cmd.Flag("dir").Value.String()
	mkConfig(dir)
	mkSigningKey(dir)
}

func mkConfig(dir string) {
	file := path.Join(dir, "config.toml")
	logger := &application.LoggerConfig{
		EnableStacktrace: true,
		Environment:      "development",
		Path:             "sessionclient.log",
	}

	conf := client.NewConfig(file, "toml", "sign.priv", "links.db", logger)
	if err := application.SaveConfig(conf); err != nil {
		log.Println(err)
	}
}

func mkSigningKey(dir string) {
	sk, err := sign.GenerateKey()
	if err != nil {
		log.Print(err)
		return
	}
	if err := utils.WriteFile(path.Join(dir, "sign.priv"), sk, 0600); err != nil {
		log.Print(err)
		return
	}
}
