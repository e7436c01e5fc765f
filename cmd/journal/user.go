// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Inspect the backend user directory",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users and their role codes",
	RunE:  runUserList,
}

func runUserList(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)
	all, err := client.Users(context.Background())
	if err != nil {
		return err
	}

	users := make([]types.User, 0, len(all))
	for _, u := range all {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-32s  %-24s  %s\n", "Email", "Name", "Roles")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, u := range users {
		roles := make([]string, len(u.RoleCodes))
		for i, r := range u.RoleCodes {
			roles[i] = string(r)
		}
		fmt.Fprintf(os.Stdout, "%-32s  %-24s  %s\n",
			truncate(u.Email, 32), truncate(u.Name, 24), strings.Join(roles, ","))
	}
	fmt.Fprintf(os.Stdout, "\n%d users\n", len(users))
	return nil
}

func init() {
	userListCmd.Flags().Bool("json", false, "output as JSON")

	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
}
