package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/account"
	"github.com/medibook/medibook_backend/internal/service/user"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreatePatientRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Image    string
}

type UpdatePatientRequest struct {
	Name  *string
	Phone *string
	Image *string
}

// View is a patient joined with its account.
type View struct {
	*repo.Patient
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Image string `json:"image,omitempty"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreatePatientRequest) (*View, error)
	Get(ctx context.Context, actor authorize.Actor, id string) (*View, error)
	List(ctx context.Context) ([]*View, error)
	Update(ctx context.Context, id string, req UpdatePatientRequest) (*View, error)
	Delete(ctx context.Context, id string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	db     *repo.Client
	hasher *password.Hasher
	users  user.Service
}

func New(db *repo.Client, hasher *password.Hasher, users user.Service) Service {
	return &patientService{db: db, hasher: hasher, users: users}
}

func view(p *repo.Patient, u *repo.User) *View {
	v := &View{Patient: p}
	if u != nil {
		v.Name, v.Email, v.Phone, v.Image = u.Name, u.Email, u.Phone, u.Image
	}
	return v
}

func (s *patientService) load(ctx context.Context, id string) (*repo.Patient, error) {
	p, err := s.db.Patient.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *patientService) Create(ctx context.Context, req CreatePatientRequest) (*View, error) {
	var p *repo.Patient
	u, err := account.Create(ctx, s.db, s.hasher, account.Request{
		Name: req.Name, Email: req.Email, Password: req.Password, Phone: req.Phone, Image: req.Image,
	}, authorize.RolePatient, func(ctx context.Context, u *repo.User) error {
		now := time.Now().UTC()
		p = &repo.Patient{ID: repo.NewID(), UserID: u.ID, CreatedAt: now, UpdatedAt: now}
		if err := s.db.Patient.Create(ctx, p); err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view(p, u), nil
}

// Get lets admins and doctors read any patient and a patient read itself.
func (s *patientService) Get(ctx context.Context, actor authorize.Actor, id string) (*View, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsPatient() && actor.UserID.String() != p.UserID {
		return nil, ErrAccessDenied
	}
	u, err := s.db.User.Get(ctx, p.UserID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return view(p, u), nil
}

func (s *patientService) List(ctx context.Context) ([]*View, error) {
	ps, err := s.db.Patient.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.UserID)
	}
	us, err := s.db.User.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	byID := make(map[string]*repo.User, len(us))
	for _, u := range us {
		byID[u.ID] = u
	}

	out := make([]*View, 0, len(ps))
	for _, p := range ps {
		out = append(out, view(p, byID[p.UserID]))
	}
	return out, nil
}

func (s *patientService) Update(ctx context.Context, id string, req UpdatePatientRequest) (*View, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UpdateProfile(ctx, p.UserID, user.UpdateProfileRequest{Name: req.Name, Phone: req.Phone, Image: req.Image})
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.db.Patient.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return view(p, u), nil
}

// Delete removes the patient record together with its account.
func (s *patientService) Delete(ctx context.Context, id string) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.Patient.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return account.Remove(ctx, s.db, p.UserID)
}
