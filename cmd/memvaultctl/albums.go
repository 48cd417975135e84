package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	albumsCmd := &cobra.Command{Use: "albums", Short: "Album operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/albums")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	albumsCmd.AddCommand(listCmd)

	var name, description, createdBy, cover string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an album",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || createdBy == "" {
				return fmt.Errorf("--name and --by required")
			}
			req := newClient().R().SetFormData(map[string]string{
				"name":        name,
				"description": description,
				"createdBy":   createdBy,
			})
			if cover != "" {
				req.SetFile("cover", filepath.Clean(cover))
			}
			resp, err := req.Post("/api/albums")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Album name (required)")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	createCmd.Flags().StringVarP(&createdBy, "by", "b", "", "Creator name (required)")
	createCmd.Flags().StringVar(&cover, "cover", "", "Cover image file")
	albumsCmd.AddCommand(createCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete ALBUM_ID",
		Short: "Delete an album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Delete("/api/albums/" + args[0])
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	albumsCmd.AddCommand(deleteCmd)

	memoriesCmd := &cobra.Command{
		Use:   "memories ALBUM_ID",
		Short: "List the memories in an album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/albums/" + args[0] + "/memories")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	albumsCmd.AddCommand(memoriesCmd)

	rootCmd.AddCommand(albumsCmd)
}
