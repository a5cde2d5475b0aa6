// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/discovery/internal/eventprocessor"
	"github.com/tomtom215/discovery/internal/models"
)

func newPublishCmd() *cobra.Command {
	var (
		eventType string
		file      string
		url       string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a content event from a JSON file",
		Long: `Publish a content_created or content_updated event to the content stream.

The file holds one ContentRecord in its JSON form. This is how an operator
replays a change the content service failed to announce.`,
		Example: `  discovery publish --type content_updated --file record.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if url == "" {
				url = cfg.NATS.URL
			}

			event, err := readEvent(eventprocessor.EventType(eventType), file)
			if err != nil {
				return err
			}

			pub, err := eventprocessor.NewPublisher(eventprocessor.PublisherConfigFrom(&cfg.NATS, url), nil)
			if err != nil {
				return err
			}
			defer func() { _ = pub.Close() }()

			if err := pub.PublishEvent(cmd.Context(), event); err != nil {
				return fmt.Errorf("publish %s: %w", event.Type, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %s for %s\n", event.Type, event.Record.ContentID)
			return err
		},
	}

	cmd.Flags().StringVar(&eventType, "type", string(eventprocessor.EventContentUpdated), "content_created or content_updated")
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the ContentRecord JSON")
	cmd.Flags().StringVar(&url, "url", "", "NATS URL (defaults to nats.url)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readEvent loads and validates a record file as an event of type t.
func readEvent(t eventprocessor.EventType, path string) (*eventprocessor.ContentEvent, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var rec models.ContentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	event := eventprocessor.NewContentEvent(t, rec)
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}
