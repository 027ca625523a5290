package utils

import (
	"fmt"
	u "net/url"
	"strings"
)

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// ParseS3Path splits "s3://bucket/key" or "bucket/key" into its parts.
func ParseS3Path(path string) (bucket, key string, err error) {
	m := s3PathRegex.FindStringSubmatch(strings.TrimSpace(path))
	if m == nil {
		return "", "", ErrInvalidS3Path
	}
	return m[1], m[2], nil
}

// SplitProxyAuth pulls user info out of a proxy URL so it can travel
// separately in HTTPClientConfig. Explicit credentials win over embedded ones.
func SplitProxyAuth(cfg *HTTPClientConfig) {
	if cfg.ProxyURL == "" {
		return
	}
	parsed, err := u.Parse(cfg.ProxyURL)
	if err != nil || parsed.User == nil {
		return
	}
	if cfg.ProxyUsername == "" {
		cfg.ProxyUsername = parsed.User.Username()
		if password, set := parsed.User.Password(); set {
			cfg.ProxyPassword = password
		}
	}
	parsed.User = nil
	cfg.ProxyURL = parsed.String()
}

func FormatBytes(bytes uint64) string {
	const unit = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "kMGTPE"[exp])
}
