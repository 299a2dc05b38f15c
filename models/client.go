package models

import "time"

// Client is an enrolled package holder. ID is the 4-digit login the client
// types into the chat, Secret the 6-digit password allocated at enrollment.
type Client struct {
	ID              string    `bson:"id" json:"id"`
	Secret          string    `bson:"secret" json:"-"`
	FullName        string    `bson:"fullName" json:"fullName"`
	Phone           string    `bson:"phone" json:"phone"`
	Children        int       `bson:"children" json:"children"`
	PackageType     int       `bson:"packageType" json:"packageType"`
	VisitsRemaining int       `bson:"visitsRemaining" json:"visitsRemaining"`
	StartDate       time.Time `bson:"startDate" json:"startDate"`
	ExpireDate      time.Time `bson:"expireDate" json:"expireDate"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NextVisit returns the visit number the client must book next.
func (c *Client) NextVisit() int {
	return c.PackageType - c.VisitsRemaining + 1
}

// Expired reports whether the package validity window has passed.
func (c *Client) Expired(now time.Time) bool {
	return now.After(c.ExpireDate)
}

// Active reports whether the client may still book visits.
func (c *Client) Active(now time.Time) bool {
	return c.VisitsRemaining > 0 && !c.Expired(now)
}
