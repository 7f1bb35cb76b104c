package domain

import (
	"net/url"
	"strings"
)

// urlTokens maps characters that cannot travel inside a path segment to the
// tokens clients substitute for them. Decoding applies them in this order.
var urlTokens = []struct {
	token string
	char  string
}{
	{"-slash-", "/"},
	{"-at-", "@"},
	{"-and-", "&"},
	{"-backslash-", `\`},
	{"-percent-", "%"},
}

// DecodeURLToken percent-decodes s and then expands the separator tokens.
// A value that is not valid percent-encoding is taken literally.
func DecodeURLToken(s string) string {
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	for _, t := range urlTokens {
		s = strings.ReplaceAll(s, t.token, t.char)
	}
	return s
}

// EncodeURLToken is the inverse of DecodeURLToken.
func EncodeURLToken(s string) string {
	for i := len(urlTokens) - 1; i >= 0; i-- {
		s = strings.ReplaceAll(s, urlTokens[i].char, urlTokens[i].token)
	}
	return url.PathEscape(s)
}
