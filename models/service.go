package models

import "time"

// Category is the closed set of service categories.
type Category string

const (
	CategoryCleaning   Category = "Cleaning"
	CategoryPlumbing   Category = "Plumbing"
	CategoryHVAC       Category = "HVAC"
	CategoryBeauty     Category = "Beauty"
	CategoryTutoring   Category = "Tutoring"
	CategoryFitness    Category = "Fitness"
	CategoryElectrical Category = "Electrical"
	CategoryOther      Category = "Other"
)

// CategoryInfo describes a category for the public catalog.
type CategoryInfo struct {
	Name        Category `json:"name"`
	Description string   `json:"description"`
}

var Categories = []CategoryInfo{
	{Name: CategoryCleaning, Description: "House and office cleaning services"},
	{Name: CategoryPlumbing, Description: "Plumbing repair and installation"},
	{Name: CategoryHVAC, Description: "Heating, ventilation, and air conditioning"},
	{Name: CategoryBeauty, Description: "Beauty and wellness services"},
	{Name: CategoryTutoring, Description: "Educational and tutoring services"},
	{Name: CategoryFitness, Description: "Personal training and fitness"},
	{Name: CategoryElectrical, Description: "Electrical repair and installation"},
	{Name: CategoryOther, Description: "Other professional services"},
}

func (c Category) IsValid() bool {
	for _, info := range Categories {
		if info.Name == c {
			return true
		}
	}
	return false
}

// TimeWindow is an HH:MM interval within a day.
type TimeWindow struct {
	Start string `bson:"start" json:"start" validate:"required,hhmm"`
	End   string `bson:"end" json:"end" validate:"required,hhmm"`
}

// Service is a provider-owned listing.
type Service struct {
	ID           string                  `bson:"id" json:"id"`
	Name         string                  `bson:"name" json:"name"`
	Description  string                  `bson:"description" json:"description"`
	Category     Category                `bson:"category" json:"category"`
	Price        float64                 `bson:"price" json:"price"`
	Duration     string                  `bson:"duration" json:"duration"`
	ProviderID   string                  `bson:"providerId" json:"providerId"`
	ProviderName string                  `bson:"providerName,omitempty" json:"providerName,omitempty"`
	Images       []string                `bson:"images" json:"images"`
	Rating       float64                 `bson:"rating" json:"rating"`
	ReviewCount  int                     `bson:"reviewCount" json:"reviewCount"`
	IsActive     bool                    `bson:"isActive" json:"isActive"`
	Availability map[string][]TimeWindow `bson:"availability,omitempty" json:"availability,omitempty"`
	ServiceArea  []string                `bson:"serviceArea" json:"serviceArea"`
	Tags         []string                `bson:"tags" json:"tags"`
	CreatedAt    time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time               `bson:"updatedAt" json:"updatedAt"`
}

// ServiceInput is the create/update payload for a listing.
type ServiceInput struct {
	Name         string                  `json:"name" validate:"required,min=2,max=100"`
	Description  string                  `json:"description" validate:"required,min=10,max=500"`
	Category     Category                `json:"category" validate:"required,category"`
	Price        float64                 `json:"price" validate:"gte=0"`
	Duration     string                  `json:"duration" validate:"required,max=50"`
	Images       []string                `json:"images" validate:"omitempty,max=10,dive,imageurl"`
	Availability map[string][]TimeWindow `json:"availability" validate:"omitempty,dive,keys,weekday,endkeys,dive"`
	ServiceArea  []string                `json:"serviceArea" validate:"omitempty,max=20,dive,min=1,max=100"`
	Tags         []string                `json:"tags" validate:"omitempty,max=20,dive,min=1,max=30"`
	IsActive     *bool                   `json:"isActive"`
}

// ServiceFilter narrows public catalog searches.
type ServiceFilter struct {
	Category   Category
	ProviderID string
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	MinRating  *float64

	// Only active listings unless IncludeInactive is set.
	IncludeInactive bool
	SortBy          string
	SortAsc         bool
}
