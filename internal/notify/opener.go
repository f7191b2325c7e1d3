package notify

import (
	"fmt"
	"net/url"

	"github.com/pkg/browser"
)

// Opener opens an external link for the user.
type Opener interface {
	Open(link string) error
}

// BrowserOpener opens links in the user's default browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open non-web link '%s'", link)
	}

	return browser.OpenURL(u.String())
}
