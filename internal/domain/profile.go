package domain

// UserProfile is the single local identity row. PartnerID is empty until the
// user links a partner; LastCelebratedMilestone records the highest streak
// milestone already acknowledged, so each crossing celebrates once.
type UserProfile struct {
	ID          string
	UserID      string
	DisplayName string

	PartnerID   string
	PartnerName string

	LastCelebratedMilestone int
}

// HasPartner reports whether a partner is linked.
func (p *UserProfile) HasPartner() bool {
	return p.PartnerID != ""
}
