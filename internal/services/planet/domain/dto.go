package domain

import "gitplanet/internal/core/titles"

// TitleInput selects the active title, both words must be owned
type TitleInput struct {
	Prefix string `json:"prefix" validate:"required,min=1,max=64" example:"Diligent"`
	Suffix string `json:"suffix" validate:"required,min=1,max=64" example:"Builder"`
}

// Active converts the input to the persisted title
func (in TitleInput) Active() titles.Active {
	return titles.Active{Prefix: in.Prefix, Suffix: in.Suffix}
}

// VisitOutput reports the visited planet and whether it was refreshed
type VisitOutput struct {
	Planet    View `json:"planet"`
	Refreshed bool `json:"refreshed" example:"true"`
}
