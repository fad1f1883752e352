package entity

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

const (
	RawKeyPrefix = "raw/"

	_fallbackFileName = "video"
)

var (
	rawKeyPattern    = regexp.MustCompile(`^raw/([0-9a-fA-F-]{36})-`)
	extensionPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)
)

// NewRawKey builds the object key an upload for videoID is stored under.
// The file name is slugified so the key never needs escaping.
func NewRawKey(videoID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	base := slug.Make(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	if !extensionPattern.MatchString(ext) {
		ext = ""
	}
	if base == "" {
		base = _fallbackFileName
	}

	return fmt.Sprintf("%s%s-%s%s", RawKeyPrefix, videoID, base, ext)
}

// VideoIDFromRawKey extracts the 36-character video id from an upload key.
func VideoIDFromRawKey(key string) (string, bool) {
	m := rawKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}

	return m[1], true
}
