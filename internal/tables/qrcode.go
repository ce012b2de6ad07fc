package tables

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	minQRSize = 64
	maxQRSize = 1024
)

// TableURL is the client link printed on a table's QR code.
func TableURL(baseURL string, tableID int64, restaurantOpenID string) string {
	q := url.Values{}
	q.Set("openid", restaurantOpenID)
	return fmt.Sprintf("%s/table/%d?%s", strings.TrimRight(baseURL, "/"), tableID, q.Encode())
}

// RenderQRCode returns a PNG of content at size x size pixels.
func RenderQRCode(content string, size int) ([]byte, error) {
	if size < minQRSize {
		size = minQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
