package util

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Hashtags are made of Latin or Cyrillic word characters, digits and
// underscores, matching what users actually type in titles.
var hashtagRegex = regexp.MustCompile(`#[a-zA-Zа-яА-ЯёЁ0-9_]+`)

// ExtractTags finds all #hashtags in a string, keeping the leading '#'
// and the first occurrence of each tag in order.
func ExtractTags(text string) []string {
	matches := hashtagRegex.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, tag := range matches {
		if !seen[tag] {
			tags = append(tags, tag)
			seen[tag] = true
		}
	}
	return tags
}

// HasAnyTag reports whether tags contains any of the wanted tags,
// case-insensitively.
func HasAnyTag(tags, wanted []string) bool {
	for _, t := range tags {
		lower := strings.ToLower(t)
		for _, w := range wanted {
			if lower == w {
				return true
			}
		}
	}
	return false
}

// TagsToJSON converts a slice of tags into a JSON array string.
func TagsToJSON(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	bytes, _ := json.Marshal(tags)
	return string(bytes)
}

// JSONToTags converts a JSON array string back into a slice of tags.
func JSONToTags(jsonStr string) []string {
	var tags []string
	if jsonStr == "" || jsonStr == "null" {
		return []string{}
	}
	json.Unmarshal([]byte(jsonStr), &tags)
	return tags
}
