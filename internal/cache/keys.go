package cache

import (
	"fmt"
	"strings"
	"time"
)

const (
	IdentityKeyPrefix = "identity:%s"
	PostKeyPrefix     = "post:%d"
)

const (
	IdentityTTL = 5 * time.Minute
	PostTTL     = 30 * time.Minute
)

// IdentityKey caches a user looked up by username.
func IdentityKey(username string) string {
	return fmt.Sprintf(IdentityKeyPrefix, username)
}

// PostKey caches an active post by ID.
func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
