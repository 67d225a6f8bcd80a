// Package testmodels holds record types and schemas shared by the store and
// resolver tests.
package testmodels

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/entityseed/model"
)

// User is the canonical seeding target in tests.
type User struct {
	ID        string          `json:"id" dynamodbav:"id"`
	Email     string          `json:"email" dynamodbav:"email"`
	Name      string          `json:"name" dynamodbav:"name"`
	Password  string          `json:"password,omitempty" dynamodbav:"password,omitempty"`
	Age       int             `json:"age,omitempty" dynamodbav:"age,omitempty"`
	CreatedAt strfmt.DateTime `json:"created_at" dynamodbav:"created_at"`
}

// UserSchema returns a fresh schema for User identified by id.
func UserSchema() *model.Schema[User] {
	return model.NewSchema[User]("User",
		model.Field("id", func(u *User) string { return u.ID }, func(u *User, v string) { u.ID = v }),
		model.Field("email", func(u *User) string { return u.Email }, func(u *User, v string) { u.Email = v }),
		model.Field("name", func(u *User) string { return u.Name }, func(u *User, v string) { u.Name = v }),
		model.Field("password", func(u *User) string { return u.Password }, func(u *User, v string) { u.Password = v }),
		model.Field("age", func(u *User) int { return u.Age }, func(u *User, v int) { u.Age = v }),
		model.Field("created_at", func(u *User) strfmt.DateTime { return u.CreatedAt }, func(u *User, v strfmt.DateTime) { u.CreatedAt = v }),
	).IdentifiedBy("id")
}

// RatingSystem mirrors a generated OpenAPI model: required fields are pointers.
type RatingSystem struct {

	// Timestamp when the rating system was created.
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"CreatedAt"`

	// A description of the rating system.
	// Required: true
	Description *string `json:"Description"`

	// Unique identifier for the rating system.
	// Required: true
	ID *string `json:"Id"`

	// Name of the rating system.
	// Required: true
	Name *string `json:"Name"`

	// site Url
	SiteURL string `json:"SiteUrl,omitempty"`
}

// RatingSystemSchema returns a fresh schema for RatingSystem identified by id.
func RatingSystemSchema() *model.Schema[RatingSystem] {
	return model.NewSchema[RatingSystem]("RatingSystem",
		model.Field("id", func(r *RatingSystem) *string { return r.ID }, func(r *RatingSystem, v *string) { r.ID = v }),
		model.Field("name", func(r *RatingSystem) *string { return r.Name }, func(r *RatingSystem, v *string) { r.Name = v }),
		model.Field("description", func(r *RatingSystem) *string { return r.Description }, func(r *RatingSystem, v *string) { r.Description = v }),
		model.Field("site_url", func(r *RatingSystem) string { return r.SiteURL }, func(r *RatingSystem, v string) { r.SiteURL = v }),
		model.Field("created_at", func(r *RatingSystem) *strfmt.DateTime { return r.CreatedAt }, func(r *RatingSystem, v *strfmt.DateTime) { r.CreatedAt = v }),
	).IdentifiedBy("id")
}
