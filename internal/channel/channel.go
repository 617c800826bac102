// Package channel decides how a communication channel is opened and
// hands it to the desktop's protocol handlers.
package channel

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/cli/browser"

	"github.com/pdxmph/crm-tui/internal/db"
)

// Openable reports whether a channel of type t with the given value can
// be opened. Phone numbers cannot; email and skype ids always can;
// anything else only when the value is an http or https URL.
func Openable(t db.ChannelType, value string) bool {
	switch t {
	case db.ChannelMobile, db.ChannelPhone:
		return false
	case db.ChannelEmail, db.ChannelSkype:
		return true
	default:
		return isWebURL(value)
	}
}

// Prefix match is case-sensitive
func isWebURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// URL returns the URL a channel opens, and false when it has none
func URL(t db.ChannelType, value string) (string, bool) {
	if value == "" || !Openable(t, value) {
		return "", false
	}
	switch t {
	case db.ChannelEmail:
		return "mailto:" + value, true
	case db.ChannelSkype:
		return "skype:" + value, true
	default:
		return value, true
	}
}

// Opener hands a URL to the desktop
type Opener func(url string) error

// DefaultOpener uses the system's registered protocol handlers
var DefaultOpener Opener = browser.OpenURL

// Open opens ch with open. Channels without a URL are ignored.
func Open(ch db.Channel, open Opener) error {
	u, ok := URL(ch.Type, ch.Value)
	if !ok {
		return nil
	}
	if open == nil {
		open = DefaultOpener
	}
	if err := open(u); err != nil {
		return fmt.Errorf("opening %s: %w", u, err)
	}
	return nil
}

// Copier places text on the clipboard
type Copier func(text string) error

// DefaultCopier writes to the system clipboard
var DefaultCopier Copier = clipboard.WriteAll

// Copy puts the channel value on the clipboard. Empty values are ignored.
func Copy(ch db.Channel, cp Copier) error {
	if ch.Value == "" {
		return nil
	}
	if cp == nil {
		cp = DefaultCopier
	}
	if err := cp(ch.Value); err != nil {
		return fmt.Errorf("copying channel: %w", err)
	}
	return nil
}
