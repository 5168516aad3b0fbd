// Package rediskeys builds the cache keys and invalidation patterns shared by
// every listing read and write path. The formats are fixed: entries written by
// earlier deployments of the service stay addressable.
package rediskeys

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	searchNamespace       = "string:listings:search:"
	listingDetailTemplate = "string:listing:%s:details"
	userListingsTemplate  = "string:users:%s:listings"
	wildcard              = "*"
)

// SearchKey generates the key for one listing search result set.
// params is serialized as JSON without HTML escaping. Callers pass a struct so
// field order, and therefore the key, depends only on the parameter values.
func SearchKey(params any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(params); err != nil {
		return "", fmt.Errorf("failed to serialize search parameters: %w", err)
	}
	// Encode terminates the document with a newline.
	return searchNamespace + strings.TrimSuffix(buf.String(), "\n"), nil
}

// SearchInvalidationPattern matches every key produced by SearchKey.
func SearchInvalidationPattern() string {
	return searchNamespace + wildcard
}

// ListingDetailKey generates the key for a single listing document.
func ListingDetailKey(listingID string) string {
	return fmt.Sprintf(listingDetailTemplate, listingID)
}

// UserListingsKey generates the key for the listing collection owned by userID.
func UserListingsKey(userID string) string {
	return fmt.Sprintf(userListingsTemplate, userID)
}

// UserListingsInvalidationPattern matches the listing collections of all users,
// not only the one that mutated a listing.
func UserListingsInvalidationPattern() string {
	return fmt.Sprintf(userListingsTemplate, wildcard)
}

