package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered identifiers for new entities.
// Version 7 keeps primary-key inserts roughly append-ordered.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
