// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/almuwaffaq/muwaffaq-tui/internal/model"
	"github.com/almuwaffaq/muwaffaq-tui/internal/util"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored conversations",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		list := a.sessions.List()
		if len(list) == 0 {
			fmt.Println("No conversations stored.")
			return nil
		}

		for _, sess := range list {
			when := time.UnixMilli(sess.UpdatedAt).Format("2006-01-02 15:04")
			fmt.Printf("%s  %s  %3d msgs  %s\n",
				sess.ID[:8], when, sess.MessageCount(),
				util.TruncateWidth(sess.Title, 50))
		}
		return nil
	},
}

var exportFormat string

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id> [file]",
	Short: "Export a conversation as Markdown or JSON",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := findSession(a, args[0])
		if err != nil {
			return err
		}

		var data []byte
		ext := "md"
		switch exportFormat {
		case "md", "markdown":
			data = []byte(sess.ExportMarkdown())
		case "json":
			ext = "json"
			if data, err = sess.ExportJSON(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("format must be md or json, got %q", exportFormat)
		}

		path := "muwaffaq-" + sess.ID[:8] + "." + ext
		if len(args) > 1 {
			path = args[1]
		}
		if path == "-" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := util.AtomicWriteFile(path, data, 0644); err != nil {
			return err
		}
		fmt.Printf("Exported %s to %s\n", sess.ID[:8], path)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := findSession(a, args[0])
		if err != nil {
			return err
		}
		if err := a.sessions.Delete(sess.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted %s (%s)\n", sess.ID[:8], sess.Title)
		return nil
	},
}

func init() {
	sessionsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "export format: md or json")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsExportCmd, sessionsDeleteCmd)
}

// findSession resolves a full or prefix session id.
func findSession(a *app, id string) (*model.ChatSession, error) {
	var match *model.ChatSession
	for _, sess := range a.sessions.List() {
		if sess.ID == id {
			return sess, nil
		}
		if strings.HasPrefix(sess.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("id %q is ambiguous", id)
			}
			match = sess
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no session with id %q", id)
	}
	return match, nil
}
