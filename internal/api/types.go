// Package api is the HTTP client for the life-simulation backend.
package api

import "github.com/lifesim-dev/lifesim/internal/profile"

// Game instance statuses reported by the backend.
const (
	StatusActive   = "ACTIVE"
	StatusFinished = "FINISHED"
)

// User is an authenticated player.
type User struct {
	ID         profile.ID `json:"id"`
	Phone      string     `json:"phone"`
	CreateTime string     `json:"createTime,omitempty"`
}

// GameInstance is one saved playthrough in a user's history.
type GameInstance struct {
	ID             profile.ID       `json:"id"`
	UserID         profile.ID       `json:"userId"`
	TemplateID     profile.ID       `json:"templateId,omitempty"`
	UserProfile    *profile.Profile `json:"userProfile"`
	Status         string           `json:"status"`
	LastUpdateTime string           `json:"lastUpdateTime,omitempty"`
}

// Title is a short label for lists.
func (g GameInstance) Title() string {
	if g.UserProfile == nil {
		return "game " + g.ID.String()
	}
	return g.UserProfile.BasicInfo.Name
}
