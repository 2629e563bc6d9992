// Package fetch downloads remote assets referenced by render requests.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize caps downloaded images; anything bigger is not card material.
const maxBodySize = 20 << 20

var client = http.Client{Timeout: 12 * time.Second}

// Bytes downloads url and returns the raw body. Non-200 responses are
// errors; callers treat any failure as "no image" and render without it.
func Bytes(url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes", url, maxBodySize)
	}
	return body, nil
}
