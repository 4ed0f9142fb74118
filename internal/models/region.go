package models

// Region is a geographic (or virtual) community that unlocks once enough
// users of both languages have joined.
type Region struct {
	ID                    int    `json:"id"`
	Name                  string `json:"name"`
	Description           string `json:"description"`
	FrenchDescription     string `json:"frenchDescription"`
	RequiredUsersToUnlock int    `json:"requiredUsersToUnlock"`
	IsUnlocked            bool   `json:"isUnlocked"`
	FrenchUserCount       int    `json:"frenchUserCount"`
	EnglishUserCount      int    `json:"englishUserCount"`
	IsVirtual             bool   `json:"isVirtual,omitempty"`
}

// TotalUsers is the combined count across both language communities.
func (r Region) TotalUsers() int {
	return r.FrenchUserCount + r.EnglishUserCount
}

// Progress reports unlock progress as a percentage capped at 100.
func (r Region) Progress() float64 {
	if r.RequiredUsersToUnlock <= 0 {
		return 100
	}
	p := float64(r.TotalUsers()) / float64(r.RequiredUsersToUnlock) * 100
	if p > 100 {
		return 100
	}
	return p
}
