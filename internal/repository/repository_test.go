package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	assert.NotNil(t, NewUserRepository(nil))
	assert.NotNil(t, NewFlightLegRepository(nil))
	assert.NotNil(t, NewSeatRepository(nil))
	assert.NotNil(t, NewBookingRepository(nil))
}
