// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package models

import (
	"strings"
	"time"
)

// ContentType is the kind of media a record describes.
type ContentType string

const (
	ContentTypePodcast     ContentType = "podcast"
	ContentTypeDocumentary ContentType = "documentary"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == ContentTypePodcast || t == ContentTypeDocumentary
}

// ContentStatus is the publication state carried by content events.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
	StatusArchived  ContentStatus = "archived"
)

// ContentRecord is the replica's projection of canonical content.
// ContentID is the join key with the content-management collaborator.
type ContentRecord struct {
	ContentID   string        `json:"contentId" validate:"required,max=128"`
	Title       string        `json:"title" validate:"required,max=512"`
	Description string        `json:"description" validate:"max=10000"`
	Type        ContentType   `json:"type" validate:"required,oneof=podcast documentary"`
	Category    string        `json:"category" validate:"max=128"`
	Language    string        `json:"language" validate:"max=32"`
	Duration    int64         `json:"duration" validate:"gte=0"`
	PublishDate time.Time     `json:"publishDate"`
	Tags        []string      `json:"tags" validate:"max=64,dive,max=64"`
	Status      ContentStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
	CreatedAt   time.Time     `json:"createdAt,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt,omitempty"`
}

// Normalize fills defaults and cleans tags in place. Tag order is kept for
// display; blanks and duplicates are removed.
func (c *ContentRecord) Normalize() {
	c.ContentID = strings.TrimSpace(c.ContentID)
	if c.Status == "" {
		c.Status = StatusPublished
	}
	c.Tags = DedupeStrings(c.Tags)
}

// IsPublished reports whether the record is visible to discovery queries.
func (c *ContentRecord) IsPublished() bool {
	return c.Status == "" || c.Status == StatusPublished
}

// Category is an active content category with its published record count.
type Category struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Icon         string `json:"icon,omitempty"`
	IsActive     bool   `json:"isActive"`
	ContentCount int64  `json:"contentCount"`
}

// DedupeStrings trims values, drops empties and keeps first occurrences in order.
func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
