package internal

type Account struct {
	Platform string
	Name     string
	Auth     string
}

func (a Account) ID() string {
	return a.Platform + "/" + a.Name
}

// Calendar is the destination calendar on the provider, ProviderID being
// the id the provider knows it by (e.g. "primary").
type Calendar struct {
	ProviderID string
	Account    Account
}

func NewCalendar(acc Account, providerID string) *Calendar {
	if providerID == "" {
		providerID = "primary"
	}
	return &Calendar{
		ProviderID: providerID,
		Account:    acc,
	}
}

func (c Calendar) ID() string {
	return c.Account.ID() + "/" + c.ProviderID
}

func (c Calendar) String() string {
	return c.ID()
}

// Feed is the iCalendar source being mirrored.
type Feed struct {
	URL string
}
