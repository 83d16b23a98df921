package models

// DirectoryUser is the user-management record for a requester, including the
// manager (PDM) assignment when present.
type DirectoryUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PdmID    string `json:"pdm_id,omitempty"`
	PdmName  string `json:"pdm_name,omitempty"`
	PdmEmail string `json:"pdm_email,omitempty"`
}

// Pdm extracts the manager record from a directory user, or nil when no
// manager is assigned.
func (u *DirectoryUser) Pdm() *DirectoryUser {
	if u == nil || u.PdmID == "" {
		return nil
	}
	return &DirectoryUser{ID: u.PdmID, Name: u.PdmName, Email: u.PdmEmail}
}

// Collaborator is a direct report of a PDM as returned by the directory.
type Collaborator struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Position string `json:"position"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
