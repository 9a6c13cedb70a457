package backend

import (
	"context"
	"fmt"
	"net/http"

	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/potential"
	"factoryplan/internal/domain/profile"
	"factoryplan/internal/domain/user"
)

// API groups the typed services over one (token-bound) client.
type API struct {
	Phases          PhaseService
	Subphases       SubphaseService
	Potentials      PotentialService
	Profiles        ProfileService
	ProductSections ProductSectionService
	Matrix          MatrixService
	Users           UserService
}

// NewAPI builds every service on c.
func NewAPI(c *Client) *API {
	return &API{
		Phases: PhaseService{res: NewResource[phase.Phase](c, Paths{
			List:   func(int64) string { return "/phases" },
			Create: func(int64) string { return "/phases" },
			Item:   func(_, id int64) string { return fmt.Sprintf("/phases/%d", id) },
		})},
		Subphases: SubphaseService{res: NewResource[phase.Subphase](c, Paths{
			List:   func(pid int64) string { return fmt.Sprintf("/phases/%d/subphases", pid) },
			Create: func(pid int64) string { return fmt.Sprintf("/phases/%d/subphases", pid) },
			Item:   func(pid, id int64) string { return fmt.Sprintf("/phases/%d/subphases/%d", pid, id) },
		})},
		Potentials: PotentialService{client: c, res: NewResource[potential.Potential](c, Paths{
			List:   func(pid int64) string { return fmt.Sprintf("/potential/%d", pid) },
			Create: func(int64) string { return "/potential" },
			Item:   func(_, id int64) string { return fmt.Sprintf("/potential/%d", id) },
		})},
		Profiles:        ProfileService{client: c},
		ProductSections: ProductSectionService{client: c},
		Matrix: MatrixService{client: c, res: NewResource[matrix.Category](c, Paths{
			List:   func(pid int64) string { return fmt.Sprintf("/matrix/phase/%d", pid) },
			Create: func(int64) string { return "/matrix/categories" },
			Item:   func(_, id int64) string { return fmt.Sprintf("/matrix/categories/%d", id) },
		})},
		Users: UserService{client: c},
	}
}

// PhaseService covers /phases.
type PhaseService struct {
	res Resource[phase.Phase]
}

// List returns all phases ordered by phase number.
func (s PhaseService) List(ctx context.Context) ([]phase.Phase, error) {
	phases, err := s.res.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	sortPhases(phases)
	return phases, nil
}

// Get returns one phase.
func (s PhaseService) Get(ctx context.Context, id int64) (phase.Phase, error) {
	return s.res.Get(ctx, 0, id)
}

// phasePayload is the full-record body for create and update.
type phasePayload struct {
	PhaseNo     int    `json:"phaseNo"`
	Title       string `json:"title"`
	ProfileInfo string `json:"profile_info"`
}

// Save creates p when p.ID is zero, updates it otherwise.
func (s PhaseService) Save(ctx context.Context, p phase.Phase) (bool, error) {
	return s.res.Save(ctx, 0, p.ID, phasePayload{PhaseNo: p.PhaseNo, Title: p.Title, ProfileInfo: p.ProfileInfo})
}

// Delete removes a phase.
func (s PhaseService) Delete(ctx context.Context, id int64) error {
	return s.res.Delete(ctx, 0, id)
}

// SubphaseService covers /phases/:id/subphases.
type SubphaseService struct {
	res Resource[phase.Subphase]
}

// List returns the subphases of a phase ordered by order number.
func (s SubphaseService) List(ctx context.Context, phaseID int64) ([]phase.Subphase, error) {
	subs, err := s.res.List(ctx, phaseID)
	if err != nil {
		return nil, err
	}
	sortSubphases(subs)
	return subs, nil
}

type subphasePayload struct {
	Name        string   `json:"name"`
	Details     []string `json:"details"`
	OrderNumber int      `json:"orderNumber"`
}

// Save creates or updates a subphase under its phase.
func (s SubphaseService) Save(ctx context.Context, sp phase.Subphase) (bool, error) {
	details := sp.Details
	if details == nil {
		details = []string{}
	}
	return s.res.Save(ctx, sp.PhaseID, sp.ID, subphasePayload{Name: sp.Name, Details: details, OrderNumber: sp.OrderNumber})
}

// Delete removes a subphase.
func (s SubphaseService) Delete(ctx context.Context, phaseID, id int64) error {
	return s.res.Delete(ctx, phaseID, id)
}

// PotentialService covers /potential.
type PotentialService struct {
	client *Client
	res    Resource[potential.Potential]
}

// List returns the potentials of a phase in backend order.
func (s PotentialService) List(ctx context.Context, phaseID int64) ([]potential.Potential, error) {
	return s.res.List(ctx, phaseID)
}

// Save creates or updates a potential with its full record.
func (s PotentialService) Save(ctx context.Context, p potential.Potential) (bool, error) {
	return s.res.Save(ctx, p.PhaseID, p.ID, potential.PayloadOf(p))
}

// Delete removes a potential.
func (s PotentialService) Delete(ctx context.Context, id int64) error {
	return s.res.Delete(ctx, 0, id)
}

type ratingPayload struct {
	Rating int `json:"rating"`
}

// Rate sets the star rating of a potential.
func (s PotentialService) Rate(ctx context.Context, id int64, rating int) error {
	return s.client.Do(ctx, http.MethodPatch, fmt.Sprintf("/potential/%d/rating", id), ratingPayload{Rating: rating}, nil)
}

// TopRated returns potentials across all phases joined with their phase number and title.
// The order is the backend's; callers sort with potential.SortTopRated.
func (s PotentialService) TopRated(ctx context.Context) ([]potential.Potential, error) {
	var out []potential.Potential
	if err := s.client.Do(ctx, http.MethodGet, "/potential/top-rated/all", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []potential.Potential{}
	}
	return out, nil
}

// ProfileService covers /profile.
type ProfileService struct {
	client *Client
}

// Get returns the profile sections of a phase.
func (s ProfileService) Get(ctx context.Context, phaseID int64) (profile.Profile, error) {
	var p profile.Profile
	if err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/profile/%d", phaseID), nil, &p); err != nil {
		return profile.Profile{}, err
	}
	if p.Sections == nil {
		p.Sections = []profile.Section{}
	}
	return p, nil
}

// UpdateSection PATCHes a profile section and returns the backend acknowledgement.
func (s ProfileService) UpdateSection(ctx context.Context, phaseID, sectionID int64, u profile.SectionUpdate) (string, error) {
	var ack messageBody
	err := s.client.Do(ctx, http.MethodPatch, fmt.Sprintf("/profile/%d/section/%d", phaseID, sectionID), u, &ack)
	return ack.Message, err
}

// ProductSectionService covers /product-development-sections.
type ProductSectionService struct {
	client *Client
}

// List returns the product development sections. The backend may answer with
// an array, a {"sections": [...]} envelope or a single section object.
func (s ProductSectionService) List(ctx context.Context) ([]profile.ProductSection, error) {
	var raw rawBody
	if err := s.client.Do(ctx, http.MethodGet, "/product-development-sections", nil, &raw); err != nil {
		return nil, err
	}
	return decodeProductSections(raw)
}

// Update PATCHes a product development section and returns the backend acknowledgement.
func (s ProductSectionService) Update(ctx context.Context, id int64, u profile.SectionUpdate) (string, error) {
	var ack messageBody
	err := s.client.Do(ctx, http.MethodPatch, fmt.Sprintf("/product-development-sections/%d", id), u, &ack)
	return ack.Message, err
}

// MatrixService covers /matrix.
type MatrixService struct {
	client *Client
	res    Resource[matrix.Category]
}

// ForPhase returns the matrix categories of a phase. Both a bare array and a
// {"categories": [...]} envelope are accepted.
func (s MatrixService) ForPhase(ctx context.Context, phaseID int64) ([]matrix.Category, error) {
	var raw rawBody
	if err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/matrix/phase/%d", phaseID), nil, &raw); err != nil {
		return nil, err
	}
	return decodeCategories(raw)
}

// CategoryTitles returns the distinct category titles used in a phase.
func (s MatrixService) CategoryTitles(ctx context.Context, phaseID int64) ([]string, error) {
	var raw rawBody
	if err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/matrix/category-titles/%d", phaseID), nil, &raw); err != nil {
		return nil, err
	}
	return decodeTitles(raw)
}

// SaveCategory creates or updates a category with its full record.
func (s MatrixService) SaveCategory(ctx context.Context, c matrix.Category) (bool, error) {
	return s.res.Save(ctx, c.PhaseID, c.ID, matrix.PayloadOf(c))
}

// DeleteCategory removes a category.
func (s MatrixService) DeleteCategory(ctx context.Context, id int64) error {
	return s.res.Delete(ctx, 0, id)
}

// UserService covers /users.
type UserService struct {
	client *Client
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token    string
	Username string
	Role     string
}

// IsAdmin reports whether the logged in user has the admin role.
func (r LoginResult) IsAdmin() bool {
	return r.Role == user.RoleAdmin
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

// Login exchanges credentials for a bearer token.
// POST: a 2xx without a token is reported as an APIError
func (s UserService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var resp loginResponse
	if err := s.client.Do(ctx, http.MethodPost, "/users/login", loginPayload{Username: username, Password: password}, &resp); err != nil {
		return LoginResult{}, err
	}
	if resp.Token == "" {
		return LoginResult{}, &APIError{Status: http.StatusOK, Message: "Login response did not include a token"}
	}
	name := resp.User.Username
	if name == "" {
		name = username
	}
	return LoginResult{Token: resp.Token, Username: name, Role: resp.User.Role}, nil
}
