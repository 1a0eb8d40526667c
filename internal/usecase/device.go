package usecase

import (
	"net"
	"strings"
)

// 端末の粗い分類。セッション作成時に一度だけ導出する。
type DeviceInfo struct {
	Browser string
	OS      string
	Type    string
}

// リクエストから取り出すメタ情報。
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Device    DeviceInfo
}

// ResolveIPは接続元IPを決める。
// 優先順位: X-Forwarded-Forの先頭 → コネクションのremote addr → "Unknown"。
func ResolveIP(forwardedFor string, remoteAddr string) string {
	if forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}

	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil && host != "" {
			return host
		}
		return remoteAddr
	}

	return "Unknown"
}

// ParseUserAgentは部分一致でブラウザ・OS・端末種別を推定する。
// 厳密なUA解析はしない（表示用の粗い分類で十分）。
func ParseUserAgent(ua string) DeviceInfo {
	lower := strings.ToLower(ua)

	browser := "Unknown"
	switch {
	case strings.Contains(lower, "edg"):
		browser = "Edge"
	case strings.Contains(lower, "opr"), strings.Contains(lower, "opera"):
		browser = "Opera"
	case strings.Contains(lower, "firefox"):
		browser = "Firefox"
	case strings.Contains(lower, "chrome"):
		browser = "Chrome"
	case strings.Contains(lower, "safari"):
		browser = "Safari"
	}

	os := "Unknown"
	switch {
	case strings.Contains(lower, "windows"):
		os = "Windows"
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"):
		// iOSのUAは"like Mac OS X"を含むのでmacOSより先に判定する
		os = "iOS"
	case strings.Contains(lower, "mac os"), strings.Contains(lower, "macintosh"):
		os = "macOS"
	case strings.Contains(lower, "android"):
		os = "Android"
	case strings.Contains(lower, "linux"):
		os = "Linux"
	}

	deviceType := "Desktop"
	switch {
	case strings.Contains(lower, "ipad"), strings.Contains(lower, "tablet"):
		deviceType = "Tablet"
	case strings.Contains(lower, "mobile"), strings.Contains(lower, "iphone"), strings.Contains(lower, "android"):
		deviceType = "Mobile"
	}

	return DeviceInfo{
		Browser: browser,
		OS:      os,
		Type:    deviceType,
	}
}

// NewRequestMetaはヘッダ値からメタ情報を組み立てる。
func NewRequestMeta(forwardedFor string, remoteAddr string, userAgent string) RequestMeta {
	return RequestMeta{
		IPAddress: ResolveIP(forwardedFor, remoteAddr),
		UserAgent: userAgent,
		Device:    ParseUserAgent(userAgent),
	}
}
