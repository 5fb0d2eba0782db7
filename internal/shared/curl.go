// Utilities for importing webhook settings from a copied cURL command.
package shared

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlURLRe    = regexp.MustCompile(`(?:^|\s)(?:--url\s+)?['"]?(https?://[^\s'"]+)['"]?`)
	curlMethodRe = regexp.MustCompile(`(?:-X|--request)\s+['"]?([A-Za-z]+)['"]?`)
	curlDataRe   = regexp.MustCompile(`(?:-d|--data|--data-raw|--data-binary)\s+(?:'([^']*)'|"([^"]*)")`)
)

// CurlRequest is the part of a cURL command needed to call a webhook.
type CurlRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Data    string
}

// ParseCurlFile reads a .sh file containing a cURL command and parses it.
func ParseCurlFile(filepath string) (*CurlRequest, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand extracts URL, method, headers and body from a cURL command.
//
// The method defaults to POST when a body is present and GET otherwise.
func ParseCurlCommand(data []byte) (*CurlRequest, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\\r\n", " ")

	req := &CurlRequest{Headers: make(map[string]string)}

	for _, match := range curlHeaderRe.FindAllStringSubmatch(curlCmd, -1) {
		headerLine := firstGroup(match)
		key, value, ok := strings.Cut(headerLine, ":")
		if !ok {
			continue
		}
		req.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	// Header values and bodies may contain URLs of their own.
	rest := curlHeaderRe.ReplaceAllString(curlCmd, " ")
	rest = curlDataRe.ReplaceAllString(rest, " ")
	if m := curlURLRe.FindStringSubmatch(rest); m != nil {
		req.URL = m[1]
	}
	if req.URL == "" {
		return nil, fmt.Errorf("%w: no URL found in curl command", ErrInvalidInput)
	}

	if m := curlDataRe.FindStringSubmatch(curlCmd); m != nil {
		req.Data = firstGroup(m)
	}

	switch m := curlMethodRe.FindStringSubmatch(rest); {
	case m != nil:
		req.Method = strings.ToUpper(m[1])
	case req.Data != "":
		req.Method = "POST"
	default:
		req.Method = "GET"
	}

	return req, nil
}

func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// Header looks a header up case-insensitively.
func (c *CurlRequest) Header(name string) string {
	for k, v := range c.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// APIKey returns the key from X-API-Key, or from a bearer Authorization header.
func (c *CurlRequest) APIKey() string {
	if key := c.Header("X-API-Key"); key != "" {
		return key
	}
	auth := c.Header("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// SplitWebhook splits the URL into a base URL and the final path segment.
//
// "https://n8n.example.com/webhook/easyhrtools-email" becomes
// "https://n8n.example.com/webhook" and "/easyhrtools-email".
func (c *CurlRequest) SplitWebhook() (base, endpoint string, err error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", "", fmt.Errorf("%w: parse webhook URL: %v", ErrInvalidInput, err)
	}
	path := strings.TrimRight(u.Path, "/")
	i := strings.LastIndex(path, "/")
	if i < 0 || path[i+1:] == "" {
		return "", "", fmt.Errorf("%w: webhook URL %q has no endpoint path", ErrInvalidInput, c.URL)
	}

	u.Path = path[:i]
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), path[i:], nil
}

// ApplyTo points c's workflow settings at the webhook. When resource is set the endpoint
// is moved to the front of that resource's probe list.
func (c *CurlRequest) ApplyTo(cfg *WorkflowConfig, resource string) error {
	base, endpoint, err := c.SplitWebhook()
	if err != nil {
		return err
	}
	cfg.BaseURL = base
	if key := c.APIKey(); key != "" {
		cfg.APIKey = key
	}
	if resource == "" {
		return nil
	}

	if cfg.Endpoints == nil {
		cfg.Endpoints = make(map[string][]string)
	}
	paths := []string{endpoint}
	for _, p := range cfg.Endpoints[resource] {
		if p != endpoint {
			paths = append(paths, p)
		}
	}
	cfg.Endpoints[resource] = paths
	return nil
}
