package cmd

import (
	"context"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Hu-Wenqiang/session-android-service/application"
	"github.com/Hu-Wenqiang/session-android-service/cli"
	"github.com/Hu-Wenqiang/session-android-service/crypto/sign"
	"github.com/Hu-Wenqiang/session-android-service/protocol"
	"github.com/Hu-Wenqiang/session-android-service/protocol/directory"
	"github.com/Hu-Wenqiang/session-android-service/protocol/pow"
	"github.com/Hu-Wenqiang/session-android-service/storage/kv/leveldbkv"
	"github.com/Hu-Wenqiang/session-android-service/storage/linkstore"
	"github.com/Hu-Wenqiang/session-android-service/transport"
	"github.com/Hu-Wenqiang/session-android-service/utils"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"
)

const help = "- links [key] [force]:\r\n" +
	"	Fetch the verified device links of some contact's identity key.\r\n" +
	"- link-add:\r\n" +
	"	Generate a fresh secondary identity and link it to your own key.\r\n" +
	"- link-rm [key]:\r\n" +
	"	Revoke the link authorizing the given secondary key.\r\n" +
	"- primary [key]:\r\n" +
	"	Resolve the primary identity a secondary key is linked to.\r\n" +
	"- stamp [ttl] [key] [message]:\r\n" +
	"	Compute a proof-of-work stamp for a message with the given TTL in seconds.\r\n" +
	"- enable timestamp:\r\n" +
	"	Print timestamp of format <15:04:05.999999999> along with the result.\r\n" +
	"- disable timestamp:\r\n" +
	"	Disable timestamp printing.\r\n" +
	"- help:\r\n" +
	"	Display this message.\r\n" +
	"- exit, q:\r\n" +
	"	Close the REPL and exit the client."

var runCmd = cli.NewRunCommand("Session test client", run)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("config", "c", "config.toml",
		"Config file for the client (contains the directory endpoint etc).")
	runCmd.Flags().BoolP("debug", "d", false, "Turn on debugging mode")
}

func run(cmd *cobra.Command, args []string) {
	isDebugging, _ := strconv.ParseBool(cmd.Flag("debug").Value.String())
	conf := loadConfigOrExit(cmd)

	loggerConf := conf.Logger
	if loggerConf == nil {
		loggerConf = &application.LoggerConfig{Environment: "production"}
	}
	logger := application.NewLogger(loggerConf)

	signKey, selfKey, err := conf.LoadIdentity()
	if err != nil {
		log.Fatal(err)
	}

	db, err := leveldbkv.OpenDB(utils.ResolvePath(conf.DBPath, conf.GetPath()))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	store, err := linkstore.New(db)
	if err != nil {
		log.Fatal(err)
	}

	httpDir := directory.NewHTTPDirectory(transport.New(logger))
	dc := directory.New(&directory.Config{
		Server:  conf.DirectoryServer(),
		SelfKey: selfKey,
	}, httpDir, httpDir, store, nil, logger)
	engine := pow.NewEngine(nil)

	state, err := terminal.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatal(err)
	}
	defer terminal.Restore(int(os.Stdin.Fd()), state)
	term := terminal.NewTerminal(os.Stdin, "session-client> ")
	for {
		line, err := term.ReadLine()
		if err != nil {
			writeLineInRawMode(term, err.Error(), isDebugging)
			return
		}

		args := strings.Fields(line)
		if len(args) < 1 {
			writeLineInRawMode(term, `[!] Type "help" for more information.`, isDebugging)
			continue
		}
		cmd := args[0]

		switch cmd {
		case "exit", "q":
			writeLineInRawMode(term, "[+] See ya.", isDebugging)
			return
		case "help":
			writeLineInRawMode(term, help, false) // turn off debugging mode for this command
		case "enable", "disable":
			if len(args) != 2 {
				writeLineInRawMode(term, "[!] Unrecognized command: "+line, isDebugging)
				continue
			}
			switch args[1] {
			case "timestamp":
				if cmd == "enable" {
					isDebugging = true
				} else {
					isDebugging = false
				}
			default:
				writeLineInRawMode(term, "[!] Unrecognized command: "+line, isDebugging)
			}
		case "links":
			if len(args) != 2 && len(args) != 3 {
				writeLineInRawMode(term, "[!] Incorrect number of args to links.", isDebugging)
				continue
			}
			force := len(args) == 3 && args[2] == "force"
			msg := deviceLinks(dc, args[1], force)
			writeLineInRawMode(term, "[+] "+msg, isDebugging)
		case "link-add":
			if len(args) != 1 {
				writeLineInRawMode(term, "[!] Incorrect number of args to link-add.", isDebugging)
				continue
			}
			msg := addLink(dc, signKey, selfKey)
			writeLineInRawMode(term, "[+] "+msg, isDebugging)
		case "link-rm":
			if len(args) != 2 {
				writeLineInRawMode(term, "[!] Incorrect number of args to link-rm.", isDebugging)
				continue
			}
			msg := removeLink(dc, store, selfKey, args[1])
			writeLineInRawMode(term, "[+] "+msg, isDebugging)
		case "primary":
			if len(args) != 2 {
				writeLineInRawMode(term, "[!] Incorrect number of args to primary.", isDebugging)
				continue
			}
			msg := primaryOf(dc, args[1])
			writeLineInRawMode(term, "[+] "+msg, isDebugging)
		case "stamp":
			if len(args) < 4 {
				writeLineInRawMode(term, "[!] Incorrect number of args to stamp.", isDebugging)
				continue
			}
			msg := stampMessage(engine, args[1], args[2], strings.Join(args[3:], " "))
			writeLineInRawMode(term, "[+] "+msg, isDebugging)
		default:
			writeLineInRawMode(term, "[!] Unrecognized command: "+cmd, isDebugging)
		}
	}
}

func deviceLinks(dc *directory.Client, key string, force bool) string {
	pk := protocol.PublicKey(key)
	if !pk.Valid() {
		return ("Invalid public key.")
	}
	links, err := dc.GetDeviceLinks(context.Background(), pk, force)
	if err != nil {
		return ("Error while syncing device links: " + err.Error())
	}
	if len(links) == 0 {
		return ("No device links known for this key.")
	}
	lines := make([]string, len(links))
	for i := range links {
		lines[i] = string(links[i].MasterKey) + " <-> " + string(links[i].SlaveKey)
	}
	return ("Found " + strconv.Itoa(len(links)) + " link(s):\r\n" +
		strings.Join(lines, "\r\n"))
}

func addLink(dc *directory.Client, signKey sign.PrivateKey,
	selfKey protocol.PublicKey) string {
	slaveKey, err := sign.GenerateKey()
	if err != nil {
		return ("Couldn't generate a secondary identity: " + err.Error())
	}
	slavePub, _ := slaveKey.Public()

	link := protocol.DeviceLink{
		MasterKey: selfKey,
		SlaveKey:  protocol.PublicKey(slavePub.Hex()),
	}
	link.SignAsSlave(slaveKey)
	link.SignAsMaster(signKey)

	if err := dc.AddDeviceLink(context.Background(), link); err != nil {
		return ("Error while authorizing the link: " + err.Error())
	}
	return ("Linked secondary key: " + string(link.SlaveKey))
}

func removeLink(dc *directory.Client, store *linkstore.Store,
	selfKey protocol.PublicKey, key string) string {
	slave := protocol.PublicKey(key)
	if !slave.Valid() {
		return ("Invalid public key.")
	}
	links, err := store.GetDeviceLinks(selfKey)
	if err != nil {
		return ("Error while reading local device links: " + err.Error())
	}
	for i := range links {
		if links[i].SlaveKey == slave {
			if err := dc.RemoveDeviceLink(context.Background(), links[i]); err != nil {
				return ("Error while revoking the link: " + err.Error())
			}
			return ("Revoked link for secondary key: " + key)
		}
	}
	return ("No link known for this secondary key.")
}

func primaryOf(dc *directory.Client, key string) string {
	pk := protocol.PublicKey(key)
	if !pk.Valid() {
		return ("Invalid public key.")
	}
	primary, err := dc.GetPrimaryDevicePublicKey(context.Background(), pk)
	if err != nil {
		return ("Error while resolving the primary device: " + err.Error())
	}
	if primary == "" {
		return ("No primary device known for this key.")
	}
	return ("Primary device key is: " + string(primary))
}

func stampMessage(engine *pow.Engine, ttlArg, key, text string) string {
	ttl, err := strconv.ParseInt(ttlArg, 10, 64)
	if err != nil || ttl <= 0 {
		return ("TTL must be a positive number of seconds.")
	}
	pk := protocol.PublicKey(key)
	if !pk.Valid() {
		return ("Invalid public key.")
	}

	msg := &protocol.Message{
		Destination: pk,
		Data:        []byte(text),
		TTL:         ttl * 1000,
	}
	stamped, err := engine.Stamp(context.Background(), msg)
	if err != nil {
		return ("Error while computing the stamp: " + err.Error())
	}
	return ("Stamped at " + strconv.FormatInt(int64(stamped.Timestamp), 10) +
		" with nonce " + hex.EncodeToString(stamped.Nonce))
}
