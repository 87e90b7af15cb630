// Package colors converts between the hex colors users pick in forms
// and the rgba strings stored on categories and echoed into chart
// payloads.
package colors

import (
	"fmt"
	"math/rand"
	"strings"
)

// DefaultOpacity is applied to every stored category color so chart
// segments stay readable when stacked.
const DefaultOpacity = "0.4"

// RandomHex returns a random #rrggbb color for a new category.
func RandomHex() string {
	return fmt.Sprintf("#%02x%02x%02x", rand.Intn(256), rand.Intn(256), rand.Intn(256))
}

// HexToRGBA converts "#aabbcc" to "rgba(170, 187, 204, 0.4)".
func HexToRGBA(hex string) (string, error) {
	trimmed := strings.TrimSpace(hex)
	// Sscanf ignores unconsumed input, so the length check is what
	// rejects trailing characters like "#aabbccdd".
	if len(trimmed) != 7 {
		return "", fmt.Errorf("malformed hex color %q", hex)
	}
	var r, g, b int
	if _, err := fmt.Sscanf(trimmed, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return "", fmt.Errorf("malformed hex color %q: %w", hex, err)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, DefaultOpacity), nil
}

// RGBAToHex converts a stored "rgba(r, g, b, a)" back to "#rrggbb",
// dropping the opacity. Used to prefill the category edit form.
func RGBAToHex(rgba string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(rgba), " ", "")
	var r, g, b int
	var a float64
	if _, err := fmt.Sscanf(s, "rgba(%d,%d,%d,%f)", &r, &g, &b, &a); err != nil {
		return "", fmt.Errorf("malformed rgba color %q: %w", rgba, err)
	}
	if r < 0 || r > 255 || g < 0 || g > 255 || b < 0 || b > 255 {
		return "", fmt.Errorf("rgba channel out of range in %q", rgba)
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), nil
}
