// Package keysetapi reads a per-branch product listing that pages by the last
// product code seen. Each product carries its shelf price and, when on offer,
// a one-day promotional price.
package keysetapi
