// Package pricing formats and decodes the price values stored in the
// downstream price table.
//
// Values are kept as pt-BR formatted strings ("10,50", "1.234,00"). Promotional
// and combo rows pack several terms into the same value, separated by
// Delimiter. Encode and decode live here so callers never split values by hand.
//
// # Layouts
//
//   - regular:     "10,50"
//   - promotional: "10,50!@#8,99" (regular!@#promotional), or "8,99" when no
//     regular price is known
//   - combo:       "10,50!@#3!@#27,00!@#ARROZ 5KG" (regular!@#quantity!@#promotional!@#name)
//
// # Usage
//
//	v := pricing.Format(decimal.RequireFromString("10.5")) // "10,50"
//	terms := pricing.Decode("10,50!@#8,99")
//	fmt.Println(terms.Promotional) // "8,99"
package pricing
