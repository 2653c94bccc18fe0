// Package domain holds the unified portal profile: a base record shared by all
// roles plus one role-specific extension.
package domain

import (
	"math"
	"strings"

	identitydomain "internship-portal/backend/internal/identity/domain"
)

// Profile is the merged view of a user's base record, role extension and ratings.
type Profile struct {
	ID            string              `json:"id"`
	Email         string              `json:"email"`
	Name          string              `json:"name"`
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	Avatar        string              `json:"avatar"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	Bio           string              `json:"bio"`
	Role          identitydomain.Role `json:"role"`
	Extension     Extension           `json:"extension"`
	Ratings       []Rating            `json:"ratings"`
	AverageRating float64             `json:"averageRating"`
	IsDemo        bool                `json:"isDemo"`
}

// Clone returns a copy that shares nothing mutable with p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Ratings = append([]Rating(nil), p.Ratings...)
	return &c
}

// Matches reports whether key is the profile's id or email.
func (p *Profile) Matches(key string) bool {
	if p == nil || key == "" {
		return false
	}
	return p.ID == key || strings.EqualFold(p.Email, key)
}

// Apply merges the set fields of u and recomputes the display name and initials.
func (p *Profile) Apply(u Update) {
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.FirstName != nil || u.LastName != nil {
		p.Name = DisplayName(p.FirstName, p.LastName)
		p.Avatar = Initials(p.FirstName, p.LastName)
	}
}

// AddRating appends r and recomputes the average. Out-of-range ratings are rejected.
func (p *Profile) AddRating(r Rating) bool {
	if !r.Valid() {
		return false
	}
	p.Ratings = append(p.Ratings, r)
	p.AverageRating = Average(p.Ratings)
	return true
}

// Update is a partial profile change; nil fields are left alone.
type Update struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// Persistable keeps only the fields a real account may write to its base record.
func (u Update) Persistable() Update {
	return Update{FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone, Address: u.Address}
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Phone == nil && u.Address == nil && u.Bio == nil
}

// Rating is one evaluation left on a profile.
type Rating struct {
	ID      string  `json:"id"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment,omitempty"`
	Date    string  `json:"date,omitempty"`
	Author  string  `json:"author,omitempty"`
}

// Valid reports whether the score lies in [0, 5].
func (r Rating) Valid() bool {
	return !math.IsNaN(r.Rating) && r.Rating >= 0 && r.Rating <= 5
}

// Average is the arithmetic mean rounded to two decimals; 0 for no ratings.
func Average(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r.Rating
	}
	return math.Round(sum/float64(len(ratings))*100) / 100
}

// Initials returns the uppercased first letters of first and last name ("JD").
func Initials(first, last string) string {
	return firstLetter(first) + firstLetter(last)
}

func firstLetter(s string) string {
	for _, r := range strings.TrimSpace(s) {
		return strings.ToUpper(string(r))
	}
	return ""
}

// DisplayName joins first and last name.
func DisplayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
