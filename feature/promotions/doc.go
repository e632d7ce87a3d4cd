// Package promotions projects promotional prices into the daily print
// queue (cf_dailyprint).
//
// Each promotion item becomes one queue row pointing at the product and at
// its price row for the promotion's branch. The poster layout depends on
// the commercial type and, for regular prices, on the product section.
package promotions
