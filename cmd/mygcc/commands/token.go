package commands

import (
	"fmt"
	"strings"

	"mygcc-backend/internal/config"
	"mygcc-backend/internal/token"
	"mygcc-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	tokenUsername string
	tokenPassword string
)

func init() {
	tokenEncodeCmd.Flags().StringVarP(&tokenUsername, "username", "u", "", "The portal username.")
	tokenEncodeCmd.Flags().StringVarP(&tokenPassword, "password", "p", "", "The portal password.")
	tokenEncodeCmd.MarkFlagRequired("username")
	tokenEncodeCmd.MarkFlagRequired("password")

	tokenCmd.AddCommand(tokenEncodeCmd)
	tokenCmd.AddCommand(tokenDecodeCmd)
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Encodes and decodes bearer tokens with the configured secrets.",
}

func loadCodec() token.Codec {
	cfg, err := config.Load(configPath)
	if err != nil {
		serviceutil.Fatal("load config", err)
	}
	codec, err := newCodec(cfg)
	if err != nil {
		serviceutil.Fatal("init token codec", err)
	}
	return codec
}

var tokenEncodeCmd = &cobra.Command{
	Use:   "encode --username <username> --password <password>",
	Short: "Prints the token for a credential without contacting the portal.",
	Run: func(cmd *cobra.Command, args []string) {
		tok, err := loadCodec().Encode(token.Credential{
			Username: tokenUsername,
			Password: tokenPassword,
		})
		if err != nil {
			serviceutil.Fatal("encode token", err)
		}
		fmt.Println(tok)
	},
}

var tokenDecodeCmd = &cobra.Command{
	Use:   "decode <token>",
	Short: "Prints the username and cached session a token carries.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		payload, err := loadCodec().Decode(args[0])
		if err != nil {
			serviceutil.Fatal("decode token", err)
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"Username", payload.Credential.Username})
		t.AppendRow(table.Row{"Password", strings.Repeat("*", len(payload.Credential.Password))})
		if payload.Cached != nil {
			t.AppendRow(table.Row{"Session id", payload.Cached.SessionId})
			t.AppendRow(table.Row{"Auth cookie", payload.Cached.AuthCookie})
		}
		t.Render()
	},
}
