// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/tomtom215/discovery/internal/models"
)

// Indexed field names.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldTagText     = "tagText"
	fieldTags        = "tags"
	fieldCategory    = "category"
	fieldType        = "type"
	fieldLanguage    = "language"
	fieldStatus      = "status"
	fieldPublishDate = "publishDate"
	fieldSource      = "source"
)

// buildIndexMapping maps content documents. Facets are keyword fields for
// exact term filters; title, description and tagText are analyzed for
// keyword search. source holds the record JSON and is stored only.
func buildIndexMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Store = false

	keyword := bleve.NewKeywordFieldMapping()
	keyword.Store = false

	date := bleve.NewDateTimeFieldMapping()
	date.Store = false

	source := bleve.NewTextFieldMapping()
	source.Index = false
	source.Store = true
	source.IncludeInAll = false
	source.IncludeTermVectors = false
	source.DocValues = false

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false
	doc.AddFieldMappingsAt(fieldTitle, text)
	doc.AddFieldMappingsAt(fieldDescription, text)
	doc.AddFieldMappingsAt(fieldTagText, text)
	doc.AddFieldMappingsAt(fieldTags, keyword)
	doc.AddFieldMappingsAt(fieldCategory, keyword)
	doc.AddFieldMappingsAt(fieldType, keyword)
	doc.AddFieldMappingsAt(fieldLanguage, keyword)
	doc.AddFieldMappingsAt(fieldStatus, keyword)
	doc.AddFieldMappingsAt(fieldPublishDate, date)
	doc.AddFieldMappingsAt(fieldSource, source)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = "standard"
	return im
}

// document is the flattened form handed to bleve.
type document map[string]interface{}

func toDocument(c *models.ContentRecord, source []byte) document {
	status := c.Status
	if c.IsPublished() {
		status = models.StatusPublished
	}
	d := document{
		fieldTitle:       c.Title,
		fieldDescription: c.Description,
		fieldTags:        c.Tags,
		fieldTagText:     c.Tags,
		fieldCategory:    c.Category,
		fieldType:        string(c.Type),
		fieldLanguage:    c.Language,
		fieldStatus:      string(status),
		fieldSource:      string(source),
	}
	if !c.PublishDate.IsZero() {
		d[fieldPublishDate] = c.PublishDate.UTC()
	}
	return d
}
