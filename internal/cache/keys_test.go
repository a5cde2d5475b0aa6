// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package cache

import (
	"strings"
	"testing"
)

func TestKeyBuilders(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{TrendingKey(5), "trending_5"},
		{RecommendationsKey("u1", 10), "recommendations_u1_10"},
		{SimilarKey("c1", 3), "similar_c1_3"},
		{UserRecommendationsNamespace("u1"), "recommendations_u1"},
		{SimilarNamespace("c1"), "similar_c1"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestSearchKeyStable(t *testing.T) {
	type q struct {
		Keywords string `json:"keywords"`
	}
	a := SearchKey(q{"robots"})
	b := SearchKey(q{"robots"})
	c := SearchKey(q{"robot"})

	if a != b {
		t.Errorf("same query produced %q and %q", a, b)
	}
	if a == c {
		t.Error("different queries collided")
	}
	if !strings.HasPrefix(a, "search_") || len(a) != len("search_")+64 {
		t.Errorf("unexpected key shape %q", a)
	}
}

func TestNamespaceKind(t *testing.T) {
	tests := map[string]string{
		"trending":           "trending",
		"recommendations":    "recommendations",
		"recommendations_u1": "recommendations_user",
		"similar_c1":         "similar",
		"search":             "search",
	}
	for in, want := range tests {
		if got := NamespaceKind(in); got != want {
			t.Errorf("NamespaceKind(%q) = %q, want %q", in, got, want)
		}
	}
}
