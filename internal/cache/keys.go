// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Namespaces invalidated together.
const (
	NamespaceTrending        = "trending"
	NamespaceRecommendations = "recommendations"
	NamespaceSearch          = "search"
	NamespaceCategories      = "categories"
)

// UserRecommendationsNamespace groups one user's recommendation lists.
func UserRecommendationsNamespace(userID string) string {
	return NamespaceRecommendations + "_" + userID
}

// SimilarNamespace groups similarity lists computed for one reference record.
func SimilarNamespace(contentID string) string {
	return "similar_" + contentID
}

// NamespaceKind strips the per-user or per-content suffix for metric labels.
func NamespaceKind(namespace string) string {
	switch {
	case strings.HasPrefix(namespace, NamespaceRecommendations+"_"):
		return "recommendations_user"
	case strings.HasPrefix(namespace, "similar_"):
		return "similar"
	default:
		return namespace
	}
}

// TrendingKey is the cache key of a trending list.
func TrendingKey(limit int) string {
	return fmt.Sprintf("trending_%d", limit)
}

// RecommendationsKey is the cache key of a user's recommendation list.
func RecommendationsKey(userID string, limit int) string {
	return fmt.Sprintf("recommendations_%s_%d", userID, limit)
}

// SimilarKey is the cache key of a similarity list.
func SimilarKey(contentID string, limit int) string {
	return fmt.Sprintf("similar_%s_%d", contentID, limit)
}

// CategoriesKey is the single key of the category listing.
const CategoriesKey = "all_categories"

// GenerateKey creates a cache key from a prefix and the JSON form of params.
func GenerateKey(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to simple string key
		return fmt.Sprintf("%s_%v", prefix, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s_%x", prefix, hash)
}

// SearchKey is the cache key of a keyword search.
func SearchKey(query interface{}) string {
	return GenerateKey(NamespaceSearch, query)
}
