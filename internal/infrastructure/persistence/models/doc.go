// Package models contains the persistence representations of the
// domain aggregates with conversions in both directions. Domain
// entities never carry gorm tags; the mapping lives here.
package models
