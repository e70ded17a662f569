package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveProfileOrFirstPrefersNamed(t *testing.T) {
	cfg := &Configuration{
		ActiveProfile: "work",
		Profiles: []Profile{
			{Name: "home"},
			{Name: "work"},
		},
	}
	p := cfg.ActiveProfileOrFirst()
	assert.NotNil(t, p)
	assert.Equal(t, "work", p.Name)
}

func TestActiveProfileOrFirstFallsBackToFirst(t *testing.T) {
	cfg := &Configuration{
		ActiveProfile: "missing",
		Profiles: []Profile{
			{Name: "home"},
			{Name: "work"},
		},
	}
	p := cfg.ActiveProfileOrFirst()
	assert.NotNil(t, p)
	assert.Equal(t, "home", p.Name)
}

func TestActiveProfileOrFirstEmpty(t *testing.T) {
	cfg := &Configuration{}
	assert.Nil(t, cfg.ActiveProfileOrFirst())
}

func TestBindingOutputIsMacro(t *testing.T) {
	keyOut := BindingOutput{Key: "KEY_A"}
	macroOut := BindingOutput{Macro: "rapid"}

	assert.False(t, keyOut.IsMacro())
	assert.True(t, macroOut.IsMacro())
}

func TestGetReturnsDefaultWhenUninitialized(t *testing.T) {
	cfg = nil
	got := Get()
	assert.Equal(t, &Default, got)
}
