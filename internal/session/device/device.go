// Package device describes the browser behind a session connection for
// logs and audit events.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Info is what the bridge records about a connecting browser.
type Info struct {
	Name     string // "Browser on OS"
	Browser  string
	Major    string
	OS       string
	Mobile   bool
	Platform string
}

// Kind is "mobile" or "desktop".
func (i Info) Kind() string {
	if i.Mobile {
		return "mobile"
	}
	return "desktop"
}

// Describe parses a User-Agent header. An empty header yields "Unknown Device".
func Describe(userAgent string) Info {
	if strings.TrimSpace(userAgent) == "" {
		return Info{Name: "Unknown Device", Major: "unknown"}
	}

	ua := useragent.New(userAgent)
	browser, version := ua.Browser()
	info := Info{
		Browser:  strings.TrimSpace(browser),
		Major:    majorVersion(version),
		OS:       strings.TrimSpace(ua.OS()),
		Mobile:   ua.Mobile(),
		Platform: strings.TrimSpace(ua.Platform()),
	}
	info.Name = displayName(info)
	return info
}

func displayName(i Info) string {
	browser := i.Browser
	if i.Mobile && i.Platform != "" {
		return strings.TrimSpace(browser + " on " + i.Platform)
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := i.OS
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}

func majorVersion(version string) string {
	if major, _, _ := strings.Cut(version, "."); major != "" {
		return major
	}
	return "unknown"
}
