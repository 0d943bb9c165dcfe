package utils

import (
	ua "github.com/mssola/user_agent"
)

// ClientInfo is a compact summary of a User-Agent string, attached to
// login audit log entries
type ClientInfo struct {
	DeviceType string `json:"device_type"` // mobile or desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

// SummarizeUserAgent parses a User-Agent string into a ClientInfo
func SummarizeUserAgent(userAgent string) ClientInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return ClientInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
		}
	}

	parser := ua.New(userAgent)

	deviceType := "desktop"
	if parser.Mobile() {
		deviceType = "mobile"
	}

	osInfo := parser.OSInfo()
	os := osInfo.Name
	if os == "" {
		os = "Unknown"
	} else if osInfo.Version != "" {
		os = os + " " + osInfo.Version
	}

	browser, _ := parser.Browser()
	if browser == "" {
		browser = "Unknown"
	}

	return ClientInfo{
		DeviceType: deviceType,
		OS:         os,
		Browser:    browser,
		IsBot:      parser.Bot(),
	}
}
