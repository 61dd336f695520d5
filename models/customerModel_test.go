package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileDataUpdatesOnlyPresentFields(t *testing.T) {
	name := "Asha"
	city := "Pune"
	empty := ""

	updates := ProfileData{Name: &name, City: &city, Landmark: &empty}.Updates()

	assert.Equal(t, map[string]any{
		"name":     "Asha",
		"city":     "Pune",
		"landmark": "",
	}, updates)
	assert.Empty(t, ProfileData{}.Updates())
}
