// internal/models/program.go
package models

// Program is a bookable volunteer program. Read-only to the intake flow;
// the admin console owns mutations.
type Program struct {
	ID               string           `json:"id" mapstructure:"id"`
	Slug             string           `json:"slug" mapstructure:"slug"`
	Title            string           `json:"title" mapstructure:"title"`
	Category         string           `json:"category" mapstructure:"category"` // conservation, education, community, medical
	DestinationID    string           `json:"destinationId" mapstructure:"destinationId"`
	Pricing          ProgramPricing   `json:"pricing" mapstructure:"pricing"`
	DurationOptions  []int            `json:"durationOptions" mapstructure:"durationOptions"`
	ShortDescription string           `json:"shortDescription" mapstructure:"shortDescription"`
	FullDescription  string           `json:"fullDescription" mapstructure:"fullDescription"`
	Included         []string         `json:"included" mapstructure:"included"`
	NotIncluded      []string         `json:"notIncluded" mapstructure:"notIncluded"`
	Images           []string         `json:"images" mapstructure:"images"`
	Rating           float64          `json:"rating" mapstructure:"rating"`
	ReviewCount      int              `json:"reviewCount" mapstructure:"reviewCount"`
	MaxParticipants  int              `json:"maxParticipants" mapstructure:"maxParticipants"`
	Status           string           `json:"status" mapstructure:"status"` // active, inactive
	Featured         bool             `json:"featured" mapstructure:"featured"`
}

type ProgramPricing struct {
	TwoWeeks  float64 `json:"twoWeeks" mapstructure:"twoWeeks"`
	FourWeeks float64 `json:"fourWeeks" mapstructure:"fourWeeks"`
}

// PriceFor returns the program fee for a duration in weeks, false when the
// duration is not offered.
func (p Program) PriceFor(weeks int) (float64, bool) {
	switch weeks {
	case 2:
		return p.Pricing.TwoWeeks, true
	case 4:
		return p.Pricing.FourWeeks, true
	default:
		return 0, false
	}
}
