package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	memoriesCmd := &cobra.Command{Use: "memories", Short: "Memory operations"}

	// list
	var category, grade, year, mediaType, search string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List memories with optional filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().
				SetQueryParams(map[string]string{
					"eventCategory": category,
					"grade":         grade,
					"schoolYear":    year,
					"mediaType":     mediaType,
					"search":        search,
				}).
				Get("/api/memories")
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
	listCmd.Flags().StringVarP(&category, "category", "c", "", "Event category filter")
	listCmd.Flags().StringVarP(&grade, "grade", "g", "", "Grade filter")
	listCmd.Flags().StringVarP(&year, "year", "y", "", "School year filter")
	listCmd.Flags().StringVarP(&mediaType, "media", "m", "", "Media type filter (photo|video)")
	listCmd.Flags().StringVarP(&search, "search", "s", "", "Free-text search")
	memoriesCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get MEMORY_ID",
		Short: "Get a memory by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/memories/" + args[0])
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
	memoriesCmd.AddCommand(getCmd)

	// submit
	var title, description, uploadedBy, submitMedia, submitCategory, submitGrade, submitYear, albumID, tags string
	submitCmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Submit a new memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || description == "" || uploadedBy == "" {
				return fmt.Errorf("--title, --description and --by required")
			}
			fields := map[string]string{
				"title":         title,
				"description":   description,
				"uploadedBy":    uploadedBy,
				"mediaType":     submitMedia,
				"eventCategory": submitCategory,
				"grade":         submitGrade,
				"schoolYear":    submitYear,
				"albumId":       albumID,
				"tags":          tags,
			}
			resp, err := newClient().R().
				SetFile("file", filepath.Clean(args[0])).
				SetFormData(fields).
				Post("/api/memories")
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
	submitCmd.Flags().StringVarP(&title, "title", "t", "", "Title (required)")
	submitCmd.Flags().StringVarP(&description, "description", "d", "", "Description (required)")
	submitCmd.Flags().StringVarP(&uploadedBy, "by", "b", "", "Uploader name (required)")
	submitCmd.Flags().StringVarP(&submitMedia, "media", "m", "photo", "Media type (photo|video)")
	submitCmd.Flags().StringVarP(&submitCategory, "category", "c", "other", "Event category")
	submitCmd.Flags().StringVarP(&submitGrade, "grade", "g", "", "Grade")
	submitCmd.Flags().StringVarP(&submitYear, "year", "y", "", "School year")
	submitCmd.Flags().StringVar(&albumID, "album", "", "Album ID")
	submitCmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	memoriesCmd.AddCommand(submitCmd)

	// like
	likeCmd := &cobra.Command{
		Use:   "like MEMORY_ID",
		Short: "Toggle the like on a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Post("/api/memories/" + args[0] + "/like")
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
	memoriesCmd.AddCommand(likeCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete MEMORY_ID",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Delete("/api/memories/" + args[0])
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
	memoriesCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(memoriesCmd)
}
