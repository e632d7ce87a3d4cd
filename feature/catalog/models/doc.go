// Package models defines the GORM models of the downstream catalog tables
// and their conversion from the canonical reconcile entities.
package models
