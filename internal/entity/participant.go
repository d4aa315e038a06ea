package entity

import (
	"math/rand"
	"strings"
)

// avatarPalette is cosmetic only, a weak random source is fine here.
var avatarPalette = []string{
	"#1E88E5", "#43A047", "#F4511E", "#8E24AA", "#FDD835",
	"#D81B60", "#3949AB", "#00897B", "#6D4C41", "#C0CA33",
}

type Participant struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	AvatarColor string `json:"avatarColor"`
	Initials    string `json:"initials"`
}

// NewParticipant builds the display identity for a joining connection.
// The avatar color is picked at random from the fixed palette, the
// initials are the first two characters of the trimmed name, upper-cased.
func NewParticipant(connID, username string) Participant {
	return Participant{
		ID:          connID,
		Username:    username,
		AvatarColor: avatarPalette[rand.Intn(len(avatarPalette))],
		Initials:    initialsOf(username),
	}
}

func initialsOf(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}
