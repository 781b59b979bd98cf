package entities

import "time"

// Team aggregates members under a manager.
type Team struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	ManagerID   string    `json:"manager" bson:"manager"`
	Members     []string  `json:"members" bson:"members"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// DocID implements Document.
func (t Team) DocID() string { return t.ID }

// Collection implements Document.
func (Team) Collection() Collection { return CollectionTeams }

// HasMember reports whether userID is in the member list.
func (t Team) HasMember(userID string) bool {
	return containsID(t.Members, userID)
}

// TeamPatch carries optional team field changes.
type TeamPatch struct {
	Name        *string
	Description *string
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
