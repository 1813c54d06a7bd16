package models

// Player is a single member of a team roster. Players carry no score of their own;
// points are always booked against the owning Team.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
