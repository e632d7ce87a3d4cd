package pricing

import (
	"strconv"
	"strings"
)

// Delimiter separates the terms of a composite price value.
const Delimiter = "!@#"

// Terms are the decoded parts of a stored price value.
type Terms struct {
	Regular     string `json:"regular"`
	Promotional string `json:"promotional,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Name        string `json:"name,omitempty"`
}

// EncodePromotional packs a regular and a promotional price.
// When the regular price is unknown only the promotional price is stored.
func EncodePromotional(regular, promotional string) string {
	if regular == "" || IsZero(regular) {
		return promotional
	}
	return regular + Delimiter + promotional
}

// EncodeCombo packs the terms of a "buy N, pay less" offer.
func EncodeCombo(regular string, quantity int, promotional, name string) string {
	return strings.Join([]string{regular, strconv.Itoa(quantity), promotional, name}, Delimiter)
}

// Decode splits a stored value into its terms. A value without delimiters
// decodes to its Regular term only.
func Decode(value string) Terms {
	parts := strings.Split(value, Delimiter)
	switch len(parts) {
	case 1:
		return Terms{Regular: parts[0]}
	case 2:
		return Terms{Regular: parts[0], Promotional: parts[1]}
	case 3:
		qty, _ := strconv.Atoi(parts[1])
		return Terms{Regular: parts[0], Quantity: qty, Promotional: parts[2]}
	default:
		qty, _ := strconv.Atoi(parts[1])
		return Terms{
			Regular:     parts[0],
			Quantity:    qty,
			Promotional: parts[2],
			Name:        strings.Join(parts[3:], Delimiter),
		}
	}
}
