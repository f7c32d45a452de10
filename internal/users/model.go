package users

import "time"

// User is the profile captured at sign-in. ID is the provider-qualified
// subject ("google:<sub>") and doubles as the resume owner id.
type User struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Email      string    `gorm:"column:email" json:"email"`
	FullName   string    `gorm:"column:full_name" json:"fullName"`
	GivenName  string    `gorm:"column:given_name" json:"givenName"`
	FamilyName string    `gorm:"column:family_name" json:"familyName"`
	PictureURL string    `gorm:"column:picture_url" json:"pictureUrl"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// DisplayName prefers the full name and falls back to given and family names.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	switch {
	case u.GivenName != "" && u.FamilyName != "":
		return u.GivenName + " " + u.FamilyName
	case u.GivenName != "":
		return u.GivenName
	default:
		return u.FamilyName
	}
}
