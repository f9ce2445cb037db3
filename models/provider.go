package models

import (
	"math"
	"time"
)

// Provider is a service provider account.
type Provider struct {
	ID                string     `bson:"id" json:"id"`
	FullName          string     `bson:"fullName" json:"fullName"`
	Email             string     `bson:"email" json:"email"`
	PhoneNumber       string     `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	ServiceType       string     `bson:"serviceType" json:"serviceType"`
	DocumentsVerified bool       `bson:"documentsVerified" json:"documentsVerified"`
	VerifiedAt        *time.Time `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	FCMToken          string     `bson:"fcmToken,omitempty" json:"-"`
	Rating            float64    `bson:"rating" json:"rating"`
	RatingSum         int        `bson:"ratingSum" json:"-"`
	ReviewCount       int        `bson:"reviewCount" json:"reviewCount"`

	Suspension        `bson:",inline"`
	ReliabilityRecord `bson:",inline"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
	Version   int64     `bson:"version" json:"version"`
}

// AddRating folds one review into the average, which is derived from the
// integer sum of all ratings. Records written before ratingSum existed are
// backfilled from the stored average.
func (p *Provider) AddRating(rating int) {
	if p.RatingSum == 0 && p.ReviewCount > 0 {
		p.RatingSum = int(math.Round(p.Rating * float64(p.ReviewCount)))
	}
	p.RatingSum += rating
	p.ReviewCount++
	p.Rating = math.Round(float64(p.RatingSum)/float64(p.ReviewCount)*100) / 100
}
