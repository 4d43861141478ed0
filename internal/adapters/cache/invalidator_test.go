package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_fansOutToAllSubscribers(t *testing.T) {
	h := NewHub()

	var first, second []string
	h.Subscribe(func(familyID string) { first = append(first, familyID) })
	h.Subscribe(func(familyID string) { second = append(second, familyID) })

	h.InvalidateFamilyMembers("fam-1")
	h.InvalidateFamilyMembers("fam-2")

	assert.Equal(t, []string{"fam-1", "fam-2"}, first)
	assert.Equal(t, []string{"fam-1", "fam-2"}, second)
}

func TestHub_noSubscribersIsANoOp(t *testing.T) {
	h := NewHub()
	assert.NotPanics(t, func() { h.InvalidateFamilyMembers("fam-1") })
}
